/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"fmt"

	"github.com/NVIDIA/redfish-service-validator/pkg/result"
)

// verdict accumulates the outcome of the checks on one path. The most
// severe finding wins; among equals the first message is kept.
type verdict struct {
	outcome result.Outcome
	message string
}

func passing() verdict {
	return verdict{outcome: result.OutcomePass}
}

func (v *verdict) set(o result.Outcome, class, format string, args ...any) {
	if o.Worse(v.outcome) {
		v.outcome = o
		v.message = result.Messagef(class, format, args...)
	}
}

func (v *verdict) fail(class, format string, args ...any) {
	v.set(result.OutcomeFail, class, format, args...)
}

func (v *verdict) warn(class, format string, args ...any) {
	v.set(result.OutcomeWarn, class, format, args...)
}

func (v *verdict) failed() bool {
	return v.outcome == result.OutcomeFail
}

// finding is the result of a single value check. A nil finding passes.
type finding struct {
	outcome result.Outcome
	class   string
	message string
}

func failf(class, format string, args ...any) *finding {
	return &finding{outcome: result.OutcomeFail, class: class, message: fmt.Sprintf(format, args...)}
}

func warnf(class, format string, args ...any) *finding {
	return &finding{outcome: result.OutcomeWarn, class: class, message: fmt.Sprintf(format, args...)}
}

func (v *verdict) apply(f *finding) {
	if f == nil {
		return
	}
	v.set(f.outcome, f.class, "%s", f.message)
}

func (v verdict) entry(e result.Entry) result.Entry {
	e.Outcome = v.outcome
	e.Message = v.message
	return e
}
