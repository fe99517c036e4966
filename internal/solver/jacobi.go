package solver

import (
	"github.com/san-kum/clothsim/internal/cloth"
)

// Jacobi relaxes the global system with Jacobi sweeps. With Chebyshev
// acceleration enabled the sweeps follow the semi-iterative schedule
//
//	ω₁ = 1, ω₂ = 2/(2-ρ²), ωₖ₊₁ = 4/(4-ρ²ωₖ)
//
// starting after Delay plain sweeps.
type Jacobi struct {
	Chebyshev bool
	Rho       float64
	Gamma     float64
	Delay     int

	ws workspace
}

func NewJacobi() *Jacobi {
	return &Jacobi{Gamma: 1}
}

func NewChebyshev(rho, gamma float64, delay int) *Jacobi {
	if rho <= 0 || rho >= 1 {
		rho = DefaultRho
	}
	if gamma <= 0 || gamma > 1 {
		gamma = DefaultGamma
	}
	if delay < 1 {
		delay = 1
	}
	return &Jacobi{Chebyshev: true, Rho: rho, Gamma: gamma, Delay: delay}
}

func (j *Jacobi) Name() string {
	if j.Chebyshev {
		return "chebyshev"
	}
	return "jacobi"
}

func (j *Jacobi) Solve(sys *cloth.System, iterations int) {
	if len(sys.Particles) == 0 {
		return
	}
	ws := &j.ws
	ws.prepare(sys)

	copy(ws.cur, ws.y)
	copy(ws.last, ws.y)

	omega := 1.0
	rho2 := j.Rho * j.Rho
	for k := 0; k < iterations; k++ {
		j.sweep(sys, ws.cur, ws.next)

		if j.Chebyshev {
			switch {
			case k < j.Delay:
				omega = 1
			case k == j.Delay:
				omega = 2 / (2 - rho2)
			default:
				omega = 4 / (4 - rho2*omega)
			}
			for i := range ws.next {
				if sys.Particles[i].InvMass == 0 {
					continue
				}
				relaxed := ws.next[i].Sub(ws.cur[i]).Mul(j.Gamma).Add(ws.cur[i])
				ws.next[i] = relaxed.Sub(ws.last[i]).Mul(omega).Add(ws.last[i])
			}
		}

		ws.last, ws.cur, ws.next = ws.cur, ws.next, ws.last
	}

	finish(sys, ws.cur)
}

// sweep performs one Jacobi update of every particle from x into out.
func (j *Jacobi) sweep(sys *cloth.System, x, out []cloth.Vec3) {
	ws := &j.ws
	for i := range out {
		out[i] = ws.y[i].Mul(ws.inert[i])
	}
	for _, sp := range sys.Springs {
		d := projection(x[sp.A], x[sp.B], sp.Rest)
		out[sp.A] = out[sp.A].Add(x[sp.B].Add(d).Mul(sp.Stiffness))
		out[sp.B] = out[sp.B].Add(x[sp.A].Sub(d).Mul(sp.Stiffness))
	}
	for i := range out {
		if sys.Particles[i].InvMass == 0 {
			out[i] = x[i]
			continue
		}
		out[i] = out[i].Mul(1 / ws.diag[i])
	}
}
