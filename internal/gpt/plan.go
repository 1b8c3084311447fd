package gpt

import (
	"fmt"
	"strings"
)

// SizePolicy tells the allocator how to turn a spec's nominal size into sectors.
type SizePolicy uint8

const (
	// PolicyFixed sizes the partition as SizeKB KiB.
	PolicyFixed SizePolicy = iota
	// PolicySpacer advances the cursor by SizeKB KiB without creating a partition.
	PolicySpacer
	// PolicyReserve takes SizeKB*2/1024 as the sector count. Legacy plans
	// rely on this unit mismatch, so it is kept as is. A reserve resolving
	// to zero sectors fills the rest of the device.
	PolicyReserve
	// PolicyFill takes everything from the cursor to the end of the device.
	PolicyFill
)

func (p SizePolicy) String() string {
	switch p {
	case PolicyFixed:
		return "fixed"
	case PolicySpacer:
		return "spacer"
	case PolicyReserve:
		return "reserve"
	case PolicyFill:
		return "fill"
	default:
		return "unknown"
	}
}

// ParsePolicy parses the textual form returned by SizePolicy.String.
func ParsePolicy(s string) (SizePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed":
		return PolicyFixed, nil
	case "spacer":
		return PolicySpacer, nil
	case "reserve":
		return PolicyReserve, nil
	case "fill":
		return PolicyFill, nil
	}
	return 0, fmt.Errorf("%w: unknown size policy %q", ErrInvalidSpec, s)
}

const (
	// SpacerName is the legacy name marking a spacer entry.
	SpacerName = "-"
	// ReservePrefix is the legacy name prefix marking a reserve entry.
	ReservePrefix = "reserve"
	// MaxNameLen is the longest name a plan may carry.
	MaxNameLen = 35
)

// PartitionSpec is a single entry of a partition plan.
type PartitionSpec struct {
	Name   string
	SizeKB uint64
	Policy SizePolicy
}

// Spec builds a PartitionSpec, inferring its policy from the legacy
// naming conventions.
func Spec(name string, sizeKB uint64) PartitionSpec {
	return PartitionSpec{
		Name:   name,
		SizeKB: sizeKB,
		Policy: InferPolicy(name, sizeKB),
	}
}

// InferPolicy maps a name and size to a policy: "-" is a spacer, names
// starting with "reserve" are reserves, a zero size fills the rest of the
// device and everything else is fixed.
func InferPolicy(name string, sizeKB uint64) SizePolicy {
	switch {
	case name == SpacerName:
		return PolicySpacer
	case strings.HasPrefix(name, ReservePrefix):
		return PolicyReserve
	case sizeKB == 0:
		return PolicyFill
	default:
		return PolicyFixed
	}
}

// Sectors returns the number of 512-byte sectors the spec consumes when
// placed at cursor on a device of total sectors.
func (s PartitionSpec) Sectors(total, cursor uint64) uint64 {
	switch s.Policy {
	case PolicySpacer, PolicyFixed:
		return s.SizeKB * 2
	case PolicyReserve:
		if n := s.SizeKB * 2 / 1024; n > 0 {
			return n
		}
		return remaining(total, cursor)
	case PolicyFill:
		return remaining(total, cursor)
	}
	return 0
}

// Fills reports whether the spec takes the rest of the device. A reserve
// too small to cover one sector behaves like a fill.
func (s PartitionSpec) Fills() bool {
	return s.Policy == PolicyFill || (s.Policy == PolicyReserve && s.SizeKB*2/1024 == 0)
}

func remaining(total, cursor uint64) uint64 {
	if cursor >= total {
		return 0
	}
	return total - cursor
}

// Plan is an ordered list of partition specs.
type Plan []PartitionSpec

// DefaultPlan returns the built-in partition layout.
func DefaultPlan() Plan {
	return Plan{
		Spec(SpacerName, 512),
		Spec("STATE", 1024*1024),
		Spec("kernel", 16*1024),
		Spec("rootfs", 900*1024),
		Spec("kernelb", 16*1024),
		Spec("rootfsb", 500*1024),
		Spec("kernelc", 16*1024),
		Spec("rootfsc", 500*1024),
		Spec("OEM", 16*1024),
		Spec("reserve1", 512),
		Spec("reserve2", 512),
		Spec("reserve3", 512),
		Spec("EFI-SYSTEM", 16*1024),
	}
}

// Partitions counts the specs that produce a partition.
func (p Plan) Partitions() int {
	n := 0
	for _, s := range p {
		if s.Policy != PolicySpacer {
			n++
		}
	}
	return n
}

// Validate checks names and policies. It does not know the device size,
// so placement problems are left to the allocator.
func (p Plan) Validate() error {
	fillAt := -1
	for i, s := range p {
		if s.Policy == PolicySpacer {
			continue
		}
		if s.Name == "" {
			return fmt.Errorf("%w: entry %d has no name", ErrInvalidSpec, i)
		}
		if len(s.Name) > MaxNameLen {
			return fmt.Errorf("%w: name %q is longer than %d characters", ErrInvalidSpec, s.Name, MaxNameLen)
		}
		if fillAt >= 0 {
			return fmt.Errorf("%w: partition '%s' follows fill partition '%s'", ErrInvalidSpec, s.Name, p[fillAt].Name)
		}

		switch s.Policy {
		case PolicyFixed:
			if s.SizeKB == 0 {
				return fmt.Errorf("%w: fixed partition '%s' has zero size", ErrInvalidSpec, s.Name)
			}
		case PolicyFill, PolicyReserve:
		default:
			return fmt.Errorf("%w: partition '%s' has unknown policy %d", ErrInvalidSpec, s.Name, s.Policy)
		}
		if s.Fills() {
			fillAt = i
		}
	}
	return nil
}
