// Package dice resolves duality and standard dice rolls.
package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// Expression limits
const (
	DualitySides  = 12
	MaxCount      = 50
	MaxSides      = 1000
	MaxModifier   = 1000
	MaxExprLength = 200
)

// ErrInvalidExpression indicates a standard expression does not match [count]d<sides>[+|-mod].
var ErrInvalidExpression = errors.New("dice expression must look like [count]d<sides>[+|-modifier]")

// ErrCountOutOfRange indicates the dice count is outside 1-50.
var ErrCountOutOfRange = errors.New("dice count must be between 1 and 50")

// ErrSidesOutOfRange indicates the die size is outside 1-1000.
var ErrSidesOutOfRange = errors.New("dice sides must be between 1 and 1000")

// ErrInvalidDualityDie indicates hope or fear dice are outside the 1-12 range.
var ErrInvalidDualityDie = errors.New("duality dice must be between 1 and 12")

var exprPattern = regexp.MustCompile(`^(\d*)[dD](\d+)([+-]\d+)?$`)

// Outcome is the tri-state classification of a resolved roll.
type Outcome int

const (
	OutcomeNeutral Outcome = iota
	OutcomeHope
	OutcomeFear
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHope:
		return "hope"
	case OutcomeFear:
		return "fear"
	default:
		return "neutral"
	}
}

// FearFlag maps the outcome to its stored form: 1 fear, 0 hope, nil neutral.
func (o Outcome) FearFlag() *int {
	var v int
	switch o {
	case OutcomeFear:
		v = 1
	case OutcomeHope:
		v = 0
	default:
		return nil
	}
	return &v
}

// OutcomeFromFlag is the inverse of FearFlag.
func OutcomeFromFlag(fear *int) Outcome {
	switch {
	case fear == nil:
		return OutcomeNeutral
	case *fear == 1:
		return OutcomeFear
	default:
		return OutcomeHope
	}
}

// Result is a resolved roll ready to be appended to the roll log.
type Result struct {
	Dice     string
	Rolls    []int
	Modifier int
	Total    int
	Outcome  Outcome
}

// Expression is a parsed standard dice expression.
type Expression struct {
	Count    int
	Sides    int
	Modifier int
}

func (e Expression) String() string {
	s := fmt.Sprintf("%dd%d", e.Count, e.Sides)
	switch {
	case e.Modifier > 0:
		s += "+" + strconv.Itoa(e.Modifier)
	case e.Modifier < 0:
		s += strconv.Itoa(e.Modifier)
	}
	return s
}

// ParseExpression parses [count]d<sides>[+|-modifier]. Count defaults to 1 and the
// modifier stays within ±MaxModifier.
// Surrounding whitespace is ignored, the d is case-insensitive.
func ParseExpression(expr string) (Expression, error) {
	expr = strings.TrimSpace(expr)
	if len(expr) > MaxExprLength {
		return Expression{}, ErrInvalidExpression
	}
	m := exprPattern.FindStringSubmatch(expr)
	if m == nil {
		return Expression{}, ErrInvalidExpression
	}

	count := 1
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return Expression{}, ErrCountOutOfRange
		}
		count = n
	}
	if count < 1 || count > MaxCount {
		return Expression{}, ErrCountOutOfRange
	}

	sides, err := strconv.Atoi(m[2])
	if err != nil || sides < 1 || sides > MaxSides {
		return Expression{}, ErrSidesOutOfRange
	}

	mod := 0
	if m[3] != "" {
		mod, err = strconv.Atoi(m[3])
		if err != nil || mod < -MaxModifier || mod > MaxModifier {
			return Expression{}, ErrInvalidExpression
		}
	}

	return Expression{Count: count, Sides: sides, Modifier: mod}, nil
}

// EvaluateDuality classifies a pair of duality dice. Ties favour hope.
func EvaluateDuality(hope, fear, modifier int) (Result, error) {
	if hope < 1 || hope > DualitySides || fear < 1 || fear > DualitySides {
		return Result{}, ErrInvalidDualityDie
	}
	outcome := OutcomeHope
	if fear > hope {
		outcome = OutcomeFear
	}
	return Result{
		Dice:     dualityLabel(modifier),
		Rolls:    []int{hope, fear},
		Modifier: modifier,
		Total:    hope + fear + modifier,
		Outcome:  outcome,
	}, nil
}

func dualityLabel(modifier int) string {
	return Expression{Count: 2, Sides: DualitySides, Modifier: modifier}.String()
}

// Source supplies uniform integers in [0, n).
type Source interface {
	Intn(n int) int
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Resolver rolls dice from a shared source. It is safe for concurrent use.
type Resolver struct {
	mu  sync.Mutex
	src Source
}

// NewResolver returns a resolver seeded from crypto/rand.
func NewResolver() (*Resolver, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return NewResolverWithSource(rand.New(rand.NewSource(seed))), nil
}

// NewResolverWithSource returns a resolver drawing from src.
func NewResolverWithSource(src Source) *Resolver {
	return &Resolver{src: src}
}

func (r *Resolver) roll(sides int) int {
	return r.src.Intn(sides) + 1
}

// Duality rolls the hope and fear d12s and adds modifier.
func (r *Resolver) Duality(modifier int) Result {
	r.mu.Lock()
	hope := r.roll(DualitySides)
	fear := r.roll(DualitySides)
	r.mu.Unlock()

	// both dice are in range by construction
	res, _ := EvaluateDuality(hope, fear, modifier)
	return res
}

// Standard parses and rolls expr. Parse failures return an error and roll nothing.
func (r *Resolver) Standard(expr string) (Result, error) {
	e, err := ParseExpression(expr)
	if err != nil {
		return Result{}, err
	}

	rolls := make([]int, e.Count)
	sum := 0
	r.mu.Lock()
	for i := range rolls {
		rolls[i] = r.roll(e.Sides)
		sum += rolls[i]
	}
	r.mu.Unlock()

	return Result{
		Dice:     e.String(),
		Rolls:    rolls,
		Modifier: e.Modifier,
		Total:    sum + e.Modifier,
		Outcome:  OutcomeNeutral,
	}, nil
}
