// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package fingerprint identifies BSDF documents by content.
//
// A fingerprint is the BLAKE3 keyed hash of a document's canonical
// encoding, so documents that hold the same values share a
// fingerprint even when one was written with compressed blobs,
// checksums or reserved space. [Document] fingerprints encoded bytes;
// [Value] fingerprints a value tree directly.
//
// This package depends only on lib/bsdf.
package fingerprint
