package config

// PruneSpec is the read-only table of what a run removes: whole files first,
// then method fragments from the files that remain. Both lists keep their order.
type PruneSpec struct {
	filesToRemove   []string
	methodsToDelete []MethodTarget
}

// NewPruneSpec copies its inputs so later changes to them are not observed.
func NewPruneSpec(filesToRemove []string, methodsToDelete []MethodTarget) PruneSpec {
	return PruneSpec{
		filesToRemove:   copyStrings(filesToRemove),
		methodsToDelete: copyTargets(methodsToDelete),
	}
}

// FilesToRemove returns the relative paths to delete, in order.
func (s PruneSpec) FilesToRemove() []string {
	return copyStrings(s.filesToRemove)
}

// MethodsToDelete returns the per-file signature lists, in order.
func (s PruneSpec) MethodsToDelete() []MethodTarget {
	return copyTargets(s.methodsToDelete)
}

// SignatureCount returns the total number of fragments across all files.
func (s PruneSpec) SignatureCount() int {
	n := 0
	for _, m := range s.methodsToDelete {
		n += len(m.Signatures)
	}
	return n
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func copyTargets(in []MethodTarget) []MethodTarget {
	if in == nil {
		return nil
	}
	out := make([]MethodTarget, len(in))
	for i, m := range in {
		out[i] = MethodTarget{FileName: m.FileName, Signatures: copyStrings(m.Signatures)}
	}
	return out
}
