package inventory

import (
	"math"
	"strings"

	"github.com/fekuna/blueice-inventory-service/internal/apperror"
	"github.com/fekuna/blueice-inventory-service/internal/model"
)

// MaxQuantity is the largest value a stock counter or a single quantity may hold,
// the range of the INTEGER columns backing them.
const MaxQuantity = math.MaxInt32

// Operation is one stock movement. Validate checks the request on its own;
// Apply checks it against the current levels and returns the next ones.
// Apply never returns negative levels.
type Operation interface {
	Kind() model.MovementKind
	Validate() error
	Apply(cur model.StockLevels) (model.StockLevels, error)
	// Privileged operations bypass the conservation rules and need an administrator.
	Privileged() bool
}

// Restock adds bottles received from the supplier.
type Restock struct {
	Filled int
	Empty  int
}

func (Restock) Kind() model.MovementKind { return model.MovementRestock }
func (Restock) Privileged() bool         { return false }

func (op Restock) Validate() error {
	if op.Filled < 0 || op.Empty < 0 {
		return apperror.Validation("restock quantities cannot be negative (filled %d, empty %d)", op.Filled, op.Empty)
	}
	if op.Filled == 0 && op.Empty == 0 {
		return apperror.Validation("restock needs a filled or empty quantity above zero")
	}
	if op.Filled > MaxQuantity || op.Empty > MaxQuantity {
		return apperror.Validation("restock quantities cannot exceed %d (filled %d, empty %d)", MaxQuantity, op.Filled, op.Empty)
	}
	return nil
}

func (op Restock) Apply(cur model.StockLevels) (model.StockLevels, error) {
	var err error
	if cur.Filled, err = add("filled", cur.Filled, op.Filled); err != nil {
		return cur, err
	}
	if cur.Empty, err = add("empty", cur.Empty, op.Empty); err != nil {
		return cur, err
	}
	return cur, nil
}

// Refill turns empty bottles into filled ones.
type Refill struct {
	Quantity int
}

func (Refill) Kind() model.MovementKind { return model.MovementRefill }
func (Refill) Privileged() bool         { return false }

func (op Refill) Validate() error {
	return positive(op.Quantity)
}

func (op Refill) Apply(cur model.StockLevels) (model.StockLevels, error) {
	if op.Quantity > cur.Empty {
		return cur, &apperror.InsufficientStockError{Counter: "empty", Have: cur.Empty, Need: op.Quantity}
	}
	filled, err := add("filled", cur.Filled, op.Quantity)
	if err != nil {
		return cur, err
	}
	cur.Empty -= op.Quantity
	cur.Filled = filled
	return cur, nil
}

// Damage moves filled bottles to the damaged counter.
type Damage struct {
	Quantity int
	Reason   string
}

func (Damage) Kind() model.MovementKind { return model.MovementDamage }
func (Damage) Privileged() bool         { return false }

func (op Damage) Validate() error {
	if err := positive(op.Quantity); err != nil {
		return err
	}
	return required("reason", op.Reason)
}

func (op Damage) Apply(cur model.StockLevels) (model.StockLevels, error) {
	if op.Quantity > cur.Filled {
		return cur, &apperror.InsufficientStockError{Counter: "filled", Have: cur.Filled, Need: op.Quantity}
	}
	damaged, err := add("damaged", cur.Damaged, op.Quantity)
	if err != nil {
		return cur, err
	}
	cur.Filled -= op.Quantity
	cur.Damaged = damaged
	return cur, nil
}

// Loss removes filled bottles from every counter.
type Loss struct {
	Quantity int
	Reason   string
}

func (Loss) Kind() model.MovementKind { return model.MovementLoss }
func (Loss) Privileged() bool         { return false }

func (op Loss) Validate() error {
	if err := positive(op.Quantity); err != nil {
		return err
	}
	return required("reason", op.Reason)
}

func (op Loss) Apply(cur model.StockLevels) (model.StockLevels, error) {
	if op.Quantity > cur.Filled {
		return cur, &apperror.InsufficientStockError{Counter: "filled", Have: cur.Filled, Need: op.Quantity}
	}
	cur.Filled -= op.Quantity
	return cur, nil
}

// Adjust overwrites all three counters with a physical count.
type Adjust struct {
	Target model.StockLevels
	Reason string
}

func (Adjust) Kind() model.MovementKind { return model.MovementAdjust }
func (Adjust) Privileged() bool         { return true }

func (op Adjust) Validate() error {
	if !op.Target.NonNegative() {
		return apperror.Validation("adjusted stock cannot be negative (filled %d, empty %d, damaged %d)",
			op.Target.Filled, op.Target.Empty, op.Target.Damaged)
	}
	if op.Target.Filled > MaxQuantity || op.Target.Empty > MaxQuantity || op.Target.Damaged > MaxQuantity {
		return apperror.Validation("adjusted stock cannot exceed %d (filled %d, empty %d, damaged %d)",
			MaxQuantity, op.Target.Filled, op.Target.Empty, op.Target.Damaged)
	}
	return required("reason", op.Reason)
}

func (op Adjust) Apply(model.StockLevels) (model.StockLevels, error) {
	return op.Target, nil
}

// NewDamageOrLoss picks the variant for a damage form submission.
func NewDamageOrLoss(kind model.MovementKind, quantity int, reason string) (Operation, error) {
	switch kind {
	case model.MovementDamage:
		return Damage{Quantity: quantity, Reason: reason}, nil
	case model.MovementLoss:
		return Loss{Quantity: quantity, Reason: reason}, nil
	default:
		return nil, apperror.Validation("type must be DAMAGE or LOSS, got %q", kind)
	}
}

func positive(quantity int) error {
	if quantity <= 0 {
		return apperror.Validation("quantity must be positive, got %d", quantity)
	}
	if quantity > MaxQuantity {
		return apperror.Validation("quantity cannot exceed %d, got %d", MaxQuantity, quantity)
	}
	return nil
}

// add returns cur+n or a ValidationError when the counter would leave [0, MaxQuantity].
func add(counter string, cur, n int) (int, error) {
	if n > MaxQuantity-cur {
		return cur, apperror.Validation("%s stock would exceed %d (have %d, adding %d)", counter, MaxQuantity, cur, n)
	}
	return cur + n, nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperror.Validation("%s is required", field)
	}
	return nil
}
