package validate

import "github.com/ovachev/planproof/internal/model"

// verifyCitations is the structural citation check: the claim carries at
// least one citation that names a document actually present in the
// store and has both character offsets. O(1) per citation; content is
// not inspected here, that is the provenance audit's job.
func (s *Service) verifyCitations(claim model.Claim) bool {
	if !claim.Cited() {
		return false
	}
	for _, c := range claim.Citations {
		if c.Document == "" {
			continue
		}
		if !s.store.Has(c.Document) {
			continue
		}
		if !c.HasOffsets() {
			continue
		}
		return true
	}
	return false
}
