// SPDX-License-Identifier: MIT

// Package matcheck provides checkers for gonum matrices and vectors. It is
// split from package checking so that programs without linear algebra needs
// do not pull in gonum.
package matcheck

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/checkings/checkings/checking"
)

// Matrix accepts any gonum matrix.
func Matrix() *checking.Checker {
	return checking.New(checking.WithRules(matrixRule))
}

// MatrixDims accepts matrices with exactly r rows and c columns.
func MatrixDims(r, c int) *checking.Checker {
	return checking.New(checking.WithRules(matrixRule, dimsRule(r, c)))
}

// Square accepts square matrices.
func Square() *checking.Checker {
	return checking.New(checking.WithRules(matrixRule, squareRule))
}

// Symmetric accepts square matrices equal to their transpose.
func Symmetric() *checking.Checker {
	return checking.New(checking.WithRules(matrixRule, symmetricRule))
}

// Finite accepts matrices whose elements are all finite numbers.
func Finite() *checking.Checker {
	return checking.New(checking.WithRules(matrixRule, finiteRule))
}

// Vector accepts gonum vectors.
func Vector() *checking.Checker {
	return checking.New(checking.WithRules(vectorRule))
}

// VectorOfLength accepts vectors with exactly n elements.
func VectorOfLength(n int) *checking.Checker {
	return checking.New(checking.WithRules(vectorRule, vectorLengthRule(n)))
}

// VectorSorted accepts vectors whose elements are in non-decreasing order.
func VectorSorted() *checking.Checker {
	return checking.New(checking.WithRules(vectorRule, vectorSortedRule))
}

func matrixRule(value any) error {
	if _, ok := value.(mat.Matrix); !ok {
		return errors.New("Value must be a matrix")
	}
	return nil
}

func dimsRule(r, c int) checking.Rule {
	return func(value any) error {
		m, ok := value.(mat.Matrix)
		if !ok {
			return fmt.Errorf("Value must have shape (%d, %d)", r, c)
		}
		gr, gc := m.Dims()
		if gr != r || gc != c {
			return fmt.Errorf("Value must have shape (%d, %d), not (%d, %d)", r, c, gr, gc)
		}
		return nil
	}
}

func squareRule(value any) error {
	m, ok := value.(mat.Matrix)
	if !ok {
		return errors.New("Value must be a square matrix")
	}
	if r, c := m.Dims(); r != c {
		return fmt.Errorf("Value must be a square matrix, not (%d, %d)", r, c)
	}
	return nil
}

func symmetricRule(value any) error {
	m, ok := value.(mat.Matrix)
	if !ok {
		return errors.New("Value must be a symmetric matrix")
	}
	r, c := m.Dims()
	if r != c {
		return errors.New("Value must be a symmetric matrix")
	}
	for i := 0; i < r; i++ {
		for j := i + 1; j < c; j++ {
			if m.At(i, j) != m.At(j, i) {
				return errors.New("Value must be a symmetric matrix")
			}
		}
	}
	return nil
}

func finiteRule(value any) error {
	m, ok := value.(mat.Matrix)
	if !ok {
		return errors.New("Value must contain only finite values")
	}
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.New("Value must contain only finite values")
			}
		}
	}
	return nil
}

func vectorRule(value any) error {
	if _, ok := value.(mat.Vector); !ok {
		return errors.New("Value must be a vector")
	}
	return nil
}

func vectorLengthRule(n int) checking.Rule {
	return func(value any) error {
		v, ok := value.(mat.Vector)
		if !ok {
			return fmt.Errorf("Value must be a vector of length %d", n)
		}
		if got := v.Len(); got != n {
			return fmt.Errorf("Value must be a vector of length %d, not %d", n, got)
		}
		return nil
	}
}

func vectorSortedRule(value any) error {
	v, ok := value.(mat.Vector)
	if !ok {
		return errors.New("Value must be sorted")
	}
	for i := 0; i+1 < v.Len(); i++ {
		if v.AtVec(i) > v.AtVec(i+1) {
			return errors.New("Value must be sorted")
		}
	}
	return nil
}
