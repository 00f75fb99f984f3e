package proc

import "fmt"

// InputKind distinguishes the engine calls an Input replays.
type InputKind string

const (
	InputAdvance InputKind = "advance"
	InputHit     InputKind = "hit"
	InputCrit    InputKind = "crit"
	InputKill    InputKind = "kill"
	InputBlock   InputKind = "block"
	InputDodge   InputKind = "dodge"
	InputForce   InputKind = "force"
	InputConsume InputKind = "consume"
	InputRateCap InputKind = "rate_cap"
)

// Input is one recorded engine call. A session's input stream applied to a
// freshly loaded engine reproduces the same fires with the same sequence
// numbers.
//
// Only the fields relevant to Kind are read:
//   - advance: DtMs, HP, HPMax
//   - force: ProcID, Stacks, DurationMs
//   - consume: Amount
//   - rate_cap: Amount
type Input struct {
	Kind       InputKind
	DtMs       int
	HP         int
	HPMax      int
	ProcID     int
	Stacks     int
	DurationMs int
	Amount     int
}

// String renders the input for logs and diffs.
func (in Input) String() string {
	switch in.Kind {
	case InputAdvance:
		return fmt.Sprintf("advance(%d, %d/%d)", in.DtMs, in.HP, in.HPMax)
	case InputForce:
		return fmt.Sprintf("force(%d, stacks=%d, duration=%d)", in.ProcID, in.Stacks, in.DurationMs)
	case InputConsume:
		return fmt.Sprintf("consume(%d)", in.Amount)
	case InputRateCap:
		return fmt.Sprintf("rate_cap(%d)", in.Amount)
	default:
		return string(in.Kind)
	}
}

// Apply performs the engine call described by in.
// For consume inputs it returns the amount absorbed; otherwise 0.
func (e *Engine) Apply(in Input) (int, error) {
	switch in.Kind {
	case InputAdvance:
		e.Advance(in.DtMs, in.HP, in.HPMax)
	case InputHit:
		e.Hit(false)
	case InputCrit:
		e.Hit(true)
	case InputKill:
		e.Kill()
	case InputBlock:
		e.Block()
	case InputDodge:
		e.Dodge()
	case InputForce:
		if err := e.ForceActivate(in.ProcID, in.Stacks, in.DurationMs); err != nil {
			return 0, err
		}
	case InputConsume:
		return e.ConsumeAbsorb(in.Amount), nil
	case InputRateCap:
		e.SetRateCapPerSecond(in.Amount)
	default:
		return 0, &RuntimeError{
			Code:    ErrCodeUnknownInput,
			Message: fmt.Sprintf("unknown input kind %q", in.Kind),
			ProcID:  -1,
		}
	}
	return 0, nil
}
