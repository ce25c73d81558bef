package route

import "fmt"

// UnlocatedPolicy decides what the optimizer does with customers that have no coordinates.
type UnlocatedPolicy string

const (
	// UnlocatedKeep leaves their sequence untouched.
	UnlocatedKeep UnlocatedPolicy = "keep"
	// UnlocatedAppend numbers them after the located customers, in their previous order.
	UnlocatedAppend UnlocatedPolicy = "append"
	// UnlocatedExclude clears their sequence.
	UnlocatedExclude UnlocatedPolicy = "exclude"
)

func ParseUnlocatedPolicy(s string) (UnlocatedPolicy, error) {
	switch p := UnlocatedPolicy(s); p {
	case UnlocatedKeep, UnlocatedAppend, UnlocatedExclude:
		return p, nil
	case "":
		return UnlocatedKeep, nil
	}
	return "", fmt.Errorf("unknown unlocated customer policy %q (want keep, append or exclude)", s)
}
