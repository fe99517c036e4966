// Package solver advances a cloth system by one implicit Euler time step.
//
// The implicit step is written in local/global form: every sweep projects each
// spring onto its rest length along its current direction (local step) and
// then relaxes the linear system
//
//	(M/h² + L) x = M/h² y + Σ k·d
//
// where y = x + h·v + h²·M⁻¹·f is the inertial target, L the stiffness
// Laplacian and d the projected spring vectors (global step).
//
//   - [Jacobi]: fixed number of Jacobi sweeps, optionally Chebyshev accelerated
//   - [Direct]: exact global step with a dense Cholesky factorisation; a
//     reference for small grids
//
// After the sweeps the velocity is derived from the displacement since the
// previous step and scaled by the global damping factor. Positions are never
// clamped here; constraint projection corrects them afterwards.
package solver
