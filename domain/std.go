package domain

import "math"

var inf = math.Inf(1)

// Standard domains
var (
	// R is the real line
	R = MustScalars([]float64{-inf, -2.1, -1, -.01, .0, .01, 1, 2.1, inf})

	// Rplus is the non-negative reals
	Rplus = MustScalars([]float64{0, .01, .1, .9, .99, 1, 1.5, 2, 100, inf})

	// Rplusbig is the non-negative reals with no values near zero
	Rplusbig = MustScalars([]float64{0, .5, .9, .99, 1, 1.5, 2, 20, inf})

	// Unit is the closed unit interval
	Unit = MustScalars([]float64{0, .001, .1, .5, .75, .99, 1})

	Runif     = MustScalars([]float64{-1, -.4, 0, .4, 1})
	Rdunif    = MustScalars([]int{-10, 0, 10})
	Rplusunif = MustScalars([]float64{0, .5, inf})

	Rplusdunif = MustScalars([]int{2, 10, 100})

	// I is the integers
	I = MustScalars([]int{-1000, -3, -2, -1, 0, 1, 2, 3, 1000})

	// Nat* are the natural numbers with varying upper boundaries
	NatSmall = MustScalars([]int{0, 3, 4, 5, 1000})
	Nat      = MustScalars([]int{0, 1, 2, 3, 2000})
	NatBig   = MustScalars([]int{0, 1, 2, 3, 5000, 50000})

	Bool = MustScalars([]int{0, 0, 1, 1})

	Vec2small = MustVectors(
		[][]float64{
			{.1, 0},
			{-2.3, .1},
			{-2.3, 1.5},
		},
		[]float64{-25, -25},
		[]float64{25, 25},
	)

	Vec3small = MustVectors(
		[][]float64{
			{.1, 0, 0},
			{-2.3, .1, 1},
			{-2.3, 1.5, 2},
		},
		[]float64{-12, -12, -12},
		[]float64{12, 12, 12},
	)

	// PdMatrix* hold symmetric positive definite matrices
	PdMatrix2 = MustMatrices([][][]float64{
		{
			{1, 0},
			{0, 1},
		},
		{
			{.5, .05},
			{.05, 4.5},
		},
	})

	PdMatrix3 = MustMatrices([][][]float64{
		{
			{1, 0, 0},
			{0, 1, 0},
			{0, 0, 1},
		},
		{
			{.5, .1, 0},
			{.1, 1, 0},
			{0, 0, 2.5},
		},
	})
)
