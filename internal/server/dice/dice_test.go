package dice

import (
	"errors"
	"sync"
	"testing"
)

// scripted returns queued face values (1-based) in order.
type scripted struct {
	faces []int
}

func (s *scripted) Intn(n int) int {
	v := s.faces[0]
	s.faces = s.faces[1:]
	return v - 1
}

func TestDualityFearWhenSecondHigher(t *testing.T) {
	r := NewResolverWithSource(&scripted{faces: []int{7, 9}})
	res := r.Duality(0)
	if res.Outcome != OutcomeFear {
		t.Fatalf("outcome = %v, want fear", res.Outcome)
	}
	if res.Total != 16 {
		t.Fatalf("total = %d, want 16", res.Total)
	}
	if f := res.Outcome.FearFlag(); f == nil || *f != 1 {
		t.Fatalf("fear flag = %v, want 1", f)
	}
}

func TestDualityTieFavoursHope(t *testing.T) {
	r := NewResolverWithSource(&scripted{faces: []int{9, 9}})
	res := r.Duality(2)
	if res.Outcome != OutcomeHope {
		t.Fatalf("outcome = %v, want hope", res.Outcome)
	}
	if res.Total != 20 {
		t.Fatalf("total = %d, want 20", res.Total)
	}
	if res.Dice != "2d12+2" {
		t.Fatalf("dice = %q, want 2d12+2", res.Dice)
	}
	if f := res.Outcome.FearFlag(); f == nil || *f != 0 {
		t.Fatalf("fear flag = %v, want 0", f)
	}
}

func TestEvaluateDualityRejectsOutOfRange(t *testing.T) {
	for _, pair := range [][2]int{{0, 5}, {5, 13}, {-1, -1}} {
		if _, err := EvaluateDuality(pair[0], pair[1], 0); !errors.Is(err, ErrInvalidDualityDie) {
			t.Fatalf("EvaluateDuality(%d, %d) err = %v, want ErrInvalidDualityDie", pair[0], pair[1], err)
		}
	}
}

func TestStandardRoll(t *testing.T) {
	r := NewResolverWithSource(&scripted{faces: []int{4, 2}})
	res, err := r.Standard("2d6+3")
	if err != nil {
		t.Fatalf("Standard returned error: %v", err)
	}
	if res.Total != 9 {
		t.Fatalf("total = %d, want 9", res.Total)
	}
	if res.Outcome != OutcomeNeutral || res.Outcome.FearFlag() != nil {
		t.Fatalf("outcome = %v, want neutral with nil flag", res.Outcome)
	}
	if len(res.Rolls) != 2 || res.Rolls[0] != 4 || res.Rolls[1] != 2 {
		t.Fatalf("rolls = %v, want [4 2]", res.Rolls)
	}
}

func TestParseExpression(t *testing.T) {
	tests := []struct {
		expr string
		want Expression
		err  error
	}{
		{expr: "d20", want: Expression{Count: 1, Sides: 20}},
		{expr: " 3D8-1 ", want: Expression{Count: 3, Sides: 8, Modifier: -1}},
		{expr: "50d1000+10", want: Expression{Count: 50, Sides: 1000, Modifier: 10}},
		{expr: "0d6", err: ErrCountOutOfRange},
		{expr: "51d6", err: ErrCountOutOfRange},
		{expr: "d0", err: ErrSidesOutOfRange},
		{expr: "1d1001", err: ErrSidesOutOfRange},
		{expr: "", err: ErrInvalidExpression},
		{expr: "2d", err: ErrInvalidExpression},
		{expr: "2d6+", err: ErrInvalidExpression},
		{expr: "roll 2d6", err: ErrInvalidExpression},
		{expr: "d6-1000", want: Expression{Count: 1, Sides: 6, Modifier: -1000}},
		{expr: "d6+1001", err: ErrInvalidExpression},
		{expr: "d6+9223372036854775807", err: ErrInvalidExpression},
		{expr: "d6-99999999999999999999", err: ErrInvalidExpression},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := ParseExpression(tt.expr)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("err = %v, want %v", err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseExpression returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseExpression = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStandardRejectsWithoutRolling(t *testing.T) {
	src := &scripted{faces: []int{1}}
	r := NewResolverWithSource(src)
	if _, err := r.Standard("0d6"); err == nil {
		t.Fatal("expected error for 0d6")
	}
	if len(src.faces) != 1 {
		t.Fatal("source consumed on parse failure")
	}
}

func TestExpressionString(t *testing.T) {
	if s := (Expression{Count: 1, Sides: 20}).String(); s != "1d20" {
		t.Fatalf("String = %q, want 1d20", s)
	}
	if s := (Expression{Count: 2, Sides: 6, Modifier: -2}).String(); s != "2d6-2" {
		t.Fatalf("String = %q, want 2d6-2", s)
	}
}

func TestOutcomeFromFlag(t *testing.T) {
	for _, o := range []Outcome{OutcomeNeutral, OutcomeHope, OutcomeFear} {
		if got := OutcomeFromFlag(o.FearFlag()); got != o {
			t.Fatalf("OutcomeFromFlag(%v) = %v", o, got)
		}
	}
}

func TestResolverConcurrentRollsStayInRange(t *testing.T) {
	r, err := NewResolver()
	if err != nil {
		t.Fatalf("NewResolver returned error: %v", err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				res := r.Duality(0)
				for _, v := range res.Rolls {
					if v < 1 || v > DualitySides {
						t.Errorf("die out of range: %d", v)
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}
