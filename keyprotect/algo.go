package keyprotect

// algoDescriptor is the table-driven record spec.md §3/§9 calls for: the
// per-algorithm parameter order and the protected sub-range within it,
// keyed by algorithm name. This favors a data table over a tagged variant
// per algorithm, the way the teacher keeps its hash-prefix table
// (krd/ssh_agent.go's hashPrefixes map) as plain data rather than a type
// switch.
type algoDescriptor struct {
	name     string
	parmlist []string
	protFrom int // index into parmlist, inclusive
	protTo   int // index into parmlist, inclusive
}

// algoTable is the full set of supported algorithms. Adding support for a
// new algorithm (e.g. "dsa" or "ecc") means adding one entry here — no
// other code in this package names an algorithm directly.
var algoTable = []algoDescriptor{
	{
		name:     "rsa",
		parmlist: []string{"n", "e", "d", "p", "q", "u"},
		protFrom: 2,
		protTo:   5,
	},
}

func lookupAlgo(name string) (algoDescriptor, bool) {
	for _, a := range algoTable {
		if a.name == name {
			return a, true
		}
	}
	return algoDescriptor{}, false
}
