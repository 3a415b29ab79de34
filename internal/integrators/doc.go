// Package integrators advances rigid bodies by one fixed step.
//
// Both solvers apply gravity and accumulated forces, resolve joint and
// contact constraints with sequential impulses, integrate positions and then
// push penetrating bodies apart. [PGS] runs every velocity iteration over the
// full step; [SmallSteps] splits the step into one substep per iteration,
// which trades some accuracy per pass for stiffer stacks and ropes.
//
// Integrators never create or remove entities. They hold scratch buffers and
// are not safe for concurrent use.
package integrators
