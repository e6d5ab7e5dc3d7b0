package gitrepo

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// AncestryRelation describes how two commits relate in the commit graph.
type AncestryRelation int

// Ancestry relations between a first and a second commit.
const (
	// AncestryEqual means both identifiers name the same commit.
	AncestryEqual AncestryRelation = iota
	// AncestryFirstIsAncestor means the second commit descends from the first.
	AncestryFirstIsAncestor
	// AncestrySecondIsAncestor means the first commit descends from the second.
	AncestrySecondIsAncestor
	// AncestryDiverged means neither commit is an ancestor of the other.
	AncestryDiverged
)

var ancestryRelationNames = map[AncestryRelation]string{
	AncestryEqual:            "equal",
	AncestryFirstIsAncestor:  "first-is-ancestor",
	AncestrySecondIsAncestor: "second-is-ancestor",
	AncestryDiverged:         "diverged",
}

// String returns the relation name used in log fields.
func (relation AncestryRelation) String() string {
	name, known := ancestryRelationNames[relation]
	if !known {
		return "unknown"
	}
	return name
}

// AncestryRelation walks the commit graph to relate first and second.
func (repository *Repository) AncestryRelation(first plumbing.Hash, second plumbing.Hash) (AncestryRelation, error) {
	if first == second {
		return AncestryEqual, nil
	}

	firstCommit, firstLookupError := repository.lookupCommit(first)
	if firstLookupError != nil {
		return AncestryDiverged, firstLookupError
	}
	secondCommit, secondLookupError := repository.lookupCommit(second)
	if secondLookupError != nil {
		return AncestryDiverged, secondLookupError
	}

	firstIsAncestor, firstWalkError := firstCommit.IsAncestor(secondCommit)
	if firstWalkError != nil {
		return AncestryDiverged, fmt.Errorf(ancestryErrorTemplateConstant, ErrRepositoryCorrupt, first, second, firstWalkError)
	}
	if firstIsAncestor {
		return AncestryFirstIsAncestor, nil
	}

	secondIsAncestor, secondWalkError := secondCommit.IsAncestor(firstCommit)
	if secondWalkError != nil {
		return AncestryDiverged, fmt.Errorf(ancestryErrorTemplateConstant, ErrRepositoryCorrupt, second, first, secondWalkError)
	}
	if secondIsAncestor {
		return AncestrySecondIsAncestor, nil
	}

	return AncestryDiverged, nil
}

func (repository *Repository) lookupCommit(commitHash plumbing.Hash) (*object.Commit, error) {
	commit, lookupError := repository.repository.CommitObject(commitHash)
	if lookupError != nil {
		return nil, fmt.Errorf(commitLookupErrorTemplateConstant, ErrRepositoryCorrupt, commitHash, lookupError)
	}
	return commit, nil
}
