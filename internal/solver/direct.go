package solver

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/clothsim/internal/cloth"
)

// Direct solves every global step exactly. The system matrix is factorised
// once per system with a dense Cholesky decomposition, so it only suits
// small grids; it serves as the reference the iterative solvers are checked
// against.
type Direct struct {
	ws    workspace
	chol  mat.Cholesky
	ready bool
	rhs   *mat.Dense
	sol   *mat.Dense
}

func NewDirect() *Direct {
	return &Direct{}
}

func (d *Direct) Name() string { return "direct" }

func (d *Direct) factorize(sys *cloth.System) bool {
	n := len(sys.Particles)
	a := mat.NewSymDense(n, nil)
	for i := range sys.Particles {
		if sys.Particles[i].InvMass == 0 {
			a.SetSym(i, i, 1)
			continue
		}
		a.SetSym(i, i, d.ws.diag[i])
	}
	for _, sp := range sys.Springs {
		if sys.Particles[sp.A].InvMass == 0 || sys.Particles[sp.B].InvMass == 0 {
			continue
		}
		a.SetSym(sp.A, sp.B, a.At(sp.A, sp.B)-sp.Stiffness)
	}
	if !d.chol.Factorize(a) {
		return false
	}
	d.rhs = mat.NewDense(n, 3, nil)
	d.sol = mat.NewDense(n, 3, nil)
	return true
}

func (d *Direct) Solve(sys *cloth.System, iterations int) {
	if len(sys.Particles) == 0 {
		return
	}
	stale := d.ws.prepare(sys)
	if stale || !d.ready {
		d.ready = d.factorize(sys)
	}
	x := d.ws.cur
	copy(x, d.ws.y)
	if !d.ready {
		finish(sys, x)
		return
	}

	fixed := func(i int) bool { return sys.Particles[i].InvMass == 0 }
	for k := 0; k < iterations; k++ {
		for i := range sys.Particles {
			b := d.ws.y[i].Mul(d.ws.inert[i])
			if fixed(i) {
				b = x[i]
			}
			d.rhs.Set(i, 0, b[0])
			d.rhs.Set(i, 1, b[1])
			d.rhs.Set(i, 2, b[2])
		}
		for _, sp := range sys.Springs {
			proj := projection(x[sp.A], x[sp.B], sp.Rest).Mul(sp.Stiffness)
			if !fixed(sp.A) {
				add(d.rhs, sp.A, proj)
				if fixed(sp.B) {
					add(d.rhs, sp.A, x[sp.B].Mul(sp.Stiffness))
				}
			}
			if !fixed(sp.B) {
				add(d.rhs, sp.B, proj.Mul(-1))
				if fixed(sp.A) {
					add(d.rhs, sp.B, x[sp.A].Mul(sp.Stiffness))
				}
			}
		}
		if err := d.chol.SolveTo(d.sol, d.rhs); err != nil {
			break
		}
		for i := range x {
			x[i] = cloth.Vec3{d.sol.At(i, 0), d.sol.At(i, 1), d.sol.At(i, 2)}
		}
	}

	finish(sys, x)
}

func add(m *mat.Dense, row int, v cloth.Vec3) {
	m.Set(row, 0, m.At(row, 0)+v[0])
	m.Set(row, 1, m.At(row, 1)+v[1])
	m.Set(row, 2, m.At(row, 2)+v[2])
}
