// Package shift formulates the operational behavior of a shiftable
// industrial load as linear constraints over a cyclic time grid.
//
// A load may temporarily reduce (shift down) or increase (shift up) its
// demand at each step, subject to per-step limits, a minimum spacing between
// activations, a response delay before the first activation, and a mandatory
// recovery window during which shifted-down energy is returned. The
// activate/hold/recover/cooldown lifecycle is not a runtime state machine:
// it is re-expressed as per-step algebraic constraints (a binary activation
// indicator plus explicit lookback sums) evaluated simultaneously by the
// solver.
//
// Lookback windows wrap within the enclosing cycle and never cross cycle
// boundaries; within each cycle the net shifted energy plus recovery must sum
// to zero.
package shift
