// Package fit implements bounded nonlinear least squares for small curve-fitting
// problems.
//
// The solver is a projected Levenberg-Marquardt method. Each iteration solves
// the damped normal equations (JᵀJ + λ·diag(JᵀJ))·δ = -Jᵀr on the set of free
// parameters with gonum/mat, clips the trial point into the box bounds and
// accepts it only when the cost ½·Σr² decreases. Parameters sitting on a bound
// whose gradient points out of the box are held fixed for that iteration.
//
// After convergence the parameter covariance is estimated as
// s²·(JᵀJ)⁻¹ with s² = Σr²/(n-m). It is undefined when there are no more
// observations than parameters or when JᵀJ is singular, which Result reports
// through CovarianceDefined instead of failing.
package fit
