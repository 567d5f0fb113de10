/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package result holds validation outcomes.
//
// An Entry is the outcome for one property path. A Resource collects the
// entries for one fetched URI, at most one per path. The Aggregator is safe
// for concurrent use and keeps the first Resource reported for a URI; its
// Report is the document handed to the serializer.
//
// Messages start with an error class followed by a colon, for example
// "TypeMismatch: expected Edm.Int64, got string". The Report tallies
// failing and warning entries by that class.
package result
