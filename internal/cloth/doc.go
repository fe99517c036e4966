// Package cloth provides the particle system model shared by every stage of
// the cloth simulation.
//
// The package defines the data the solver and the constraint graph operate on:
//
//   - [Particle]: position, previous position, velocity, inverse mass, force
//   - [Spring]: immutable link between two particles with a rest length
//   - [System]: owner of the particle and spring arrays plus global parameters
//
// # Ownership
//
// A [System] owns its particle slice. The solver and the constraint nodes
// mutate positions in place through the same slice, one stage at a time;
// nothing in the simulation keeps a private copy of the positions.
//
// # Example
//
//	sys, err := topology.BuildUniformGrid(1.0, 33, topology.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	fmt.Println(len(sys.Particles), sys.TotalMass())
package cloth
