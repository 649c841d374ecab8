package traverse

type verdictKind int

const (
	verdictContinue verdictKind = iota
	verdictStop
	verdictFail
)

// Verdict tells the traversal what to do after a node has been visited.
type Verdict struct {
	kind   verdictKind
	reason string
}

// Continue descends into the node's children.
func Continue() Verdict { return Verdict{kind: verdictContinue} }

// StopBranch keeps the visit result but does not descend any further on this branch.
func StopBranch() Verdict { return Verdict{kind: verdictStop} }

// Fail aborts the whole traversal with an *AbortError carrying reason.
func Fail(reason string) Verdict { return Verdict{kind: verdictFail, reason: reason} }

// IsContinue reports whether the verdict descends.
func (v Verdict) IsContinue() bool { return v.kind == verdictContinue }

// IsStop reports whether the verdict truncates the branch.
func (v Verdict) IsStop() bool { return v.kind == verdictStop }

// IsFail reports whether the verdict aborts the traversal.
func (v Verdict) IsFail() bool { return v.kind == verdictFail }

// Reason is the failure reason. Empty unless IsFail.
func (v Verdict) Reason() string { return v.reason }

func (v Verdict) String() string {
	switch v.kind {
	case verdictStop:
		return "stop_branch"
	case verdictFail:
		return "fail: " + v.reason
	default:
		return "continue"
	}
}
