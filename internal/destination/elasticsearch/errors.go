// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package elasticsearch

var _ error = &DeliveryError{}

// DeliveryError wraps every failure surfaced by the Elasticsearch transport.
type DeliveryError struct {
	err error
}

func (e *DeliveryError) Error() string {
	return "elasticsearch: " + e.err.Error()
}

func (e *DeliveryError) Unwrap() error {
	return e.err
}

func (e *DeliveryError) Is(target error) bool {
	other, ok := target.(*DeliveryError)
	if !ok {
		return false
	}

	return e.err.Error() == other.err.Error()
}
