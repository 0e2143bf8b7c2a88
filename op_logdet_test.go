package pmc_test

import (
	"math"
	"testing"

	"github.com/samuelfneumann/pmc"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func TestLogDet(t *testing.T) {
	const threshold float64 = 1e-12

	backings := [][]float64{
		{1, 0, 0, 1},
		{0.5, 0.05, 0.05, 4.5},
		{0.5, 0.1, 0, 0.1, 1, 0, 0, 0, 2.5},
		{2, 1, 3, 0.5, 4, 1, 1, 2, 5},
	}

	for _, backing := range backings {
		n := int(math.Sqrt(float64(len(backing))))

		var lu mat.LU
		lu.Factorize(mat.NewDense(n, n, append([]float64(nil), backing...)))
		want, _ := lu.LogDet()

		// d log|X| / dX = X⁻ᵀ
		var inv mat.Dense
		if err := inv.Inverse(mat.NewDense(n, n,
			append([]float64(nil), backing...))); err != nil {
			t.Fatal(err)
		}

		g := G.NewGraph()
		xT := tensor.NewDense(
			tensor.Float64,
			[]int{n, n},
			tensor.WithBacking(append([]float64(nil), backing...)),
		)
		x := G.NewMatrix(g, tensor.Float64, G.WithShape(n, n),
			G.WithName("x"), G.WithValue(xT))

		out, err := pmc.LogDet(x)
		if err != nil {
			t.Fatal(err)
		}
		grads, err := G.Grad(out, x)
		if err != nil {
			t.Fatal(err)
		}

		vm := G.NewTapeMachine(g)
		if err := vm.RunAll(); err != nil {
			t.Fatal(err)
		}

		if got := out.Value().Data().(float64); math.Abs(got-want) > threshold {
			t.Errorf("expected: %v received: %v", want, got)
		}

		grad := grads[0].Value().Data().([]float64)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if math.Abs(grad[i*n+j]-inv.At(j, i)) > threshold {
					t.Errorf("expected: %v received: %v at (%d, %d)",
						inv.At(j, i), grad[i*n+j], i, j)
				}
			}
		}

		vm.Close()
	}
}

func TestLogDetNotMatrix(t *testing.T) {
	g := G.NewGraph()
	x := G.NewVector(g, tensor.Float64, G.WithShape(3), G.WithName("x"))

	if _, err := pmc.LogDet(x); err == nil {
		t.Error("expected error for vector input")
	}
}
