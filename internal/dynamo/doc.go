// Package dynamo provides the shared primitives of a particle minimization.
//
// The package defines the vector type and the small interfaces every other
// package agrees on:
//
//   - [State]: flat coordinate vector, particle i occupies [i*dim, (i+1)*dim)
//   - [Evaluator]: energy and force of a configuration
//   - [Shifter]: moves positions while keeping them inside the domain
//   - [ParallelFor], [ParallelForErr]: chunked data-parallel loops
//
// # Example
//
//	box, _ := space.NewPeriodic(2, 10.0)
//	eng, _ := potential.NewBruteForce(box, params)
//	fire, _ := minimize.NewFire(eng, box, minimize.DefaultFireConfig())
//	st, _ := fire.Init(R0)
//	for i := 0; i < steps; i++ {
//	    if err := fire.Apply(st); err != nil {
//	        return err
//	    }
//	}
//
// # Thread Safety
//
// States are plain slices and are NOT safe for concurrent mutation. A
// minimizer state is owned by exactly one caller at a time.
package dynamo
