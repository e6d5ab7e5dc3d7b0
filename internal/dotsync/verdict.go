package dotsync

import (
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/temirov/dotupdater/internal/gitrepo"
)

const (
	verdictUpToDateNameConstant    = "up-to-date"
	verdictFastForwardNameConstant = "fast-forward"
	verdictDivergedNameConstant    = "diverged"
)

// DivergenceVerdict is the decision reached for a local and remote tip pair.
//
//sumtype:decl
type DivergenceVerdict interface {
	isDivergenceVerdict()
	String() string
}

// VerdictUpToDate means the local branch already contains the remote tip.
type VerdictUpToDate struct{}

// VerdictFastForward means the local branch can move forward to Target without losing commits.
type VerdictFastForward struct {
	From   plumbing.Hash
	Target plumbing.Hash
}

// VerdictDiverged means local and remote each hold commits the other lacks.
type VerdictDiverged struct {
	Local  plumbing.Hash
	Remote plumbing.Hash
}

func (VerdictUpToDate) isDivergenceVerdict()    {}
func (VerdictFastForward) isDivergenceVerdict() {}
func (VerdictDiverged) isDivergenceVerdict()    {}

func (VerdictUpToDate) String() string    { return verdictUpToDateNameConstant }
func (VerdictFastForward) String() string { return verdictFastForwardNameConstant }
func (VerdictDiverged) String() string    { return verdictDivergedNameConstant }

// Classify decides how localTip relates to remoteTip given their ancestry relation.
// Equal tips are always up to date regardless of the supplied relation.
func Classify(localTip plumbing.Hash, remoteTip plumbing.Hash, relation gitrepo.AncestryRelation) DivergenceVerdict {
	if localTip == remoteTip {
		return VerdictUpToDate{}
	}
	switch relation {
	case gitrepo.AncestryEqual, gitrepo.AncestrySecondIsAncestor:
		return VerdictUpToDate{}
	case gitrepo.AncestryFirstIsAncestor:
		return VerdictFastForward{From: localTip, Target: remoteTip}
	default:
		return VerdictDiverged{Local: localTip, Remote: remoteTip}
	}
}
