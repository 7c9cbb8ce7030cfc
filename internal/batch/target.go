package batch

// Target is one student's repository instance under management.
//
// Targets are constructed during resolution and read-only afterward. Name is
// the repository name (assignment prefix plus student slug) and is unique
// within a resolved set.
type Target struct {
	// Name identifies the target, e.g. "hw3-ada".
	Name string

	// RemoteURL is the clone URL for sync operations. It may be empty for
	// targets resolved from the local working directory only.
	RemoteURL string

	// Dir is the local working copy path.
	Dir string
}
