package service

import (
	"slices"

	"github.com/maniaxatwork/jobs-server/internal/jobs"
)

// ResolvePageDetails folds the ancestor chain of a page into the page itself.
// chain[0] is the page, the last element its root. The nearest protected
// ancestor supplies protection and groups, the root supplies the root ID,
// the root title and, when the page has none, the domain.
func ResolvePageDetails(chain []*jobs.Page) *jobs.Page {
	if len(chain) == 0 {
		return nil
	}

	details := *chain[0]
	details.Groups = slices.Clone(chain[0].Groups)
	for _, p := range chain {
		if p.Protected && !details.Protected {
			details.Protected = true
			details.Groups = slices.Clone(p.Groups)
		}
	}

	root := chain[len(chain)-1]
	details.RootID = root.ID
	details.RootTitle = root.Title
	if details.Domain == "" {
		details.Domain = root.Domain
		details.UseSSL = root.UseSSL
	}
	return &details
}
