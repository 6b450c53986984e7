// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package smt

/*

Package smt provides an in-memory sparse Merkle tree mapping 32-byte keys to
32-byte value digests, intended as the commitment core below a storage or
consensus layer. The surrounding system stores the actual values; this
package only tracks their digests and produces the root commitment and the
per-key proof material.

The tree is kept in compressed form: only the bits up to the first
divergence between keys materialize as branches, and the resulting shape is
canonical for the contained key set. Node digests are cached with a stale
flag and recomputed lazily by Hash, so batches of mutations pay for a single
hashing pass.

Todos:
 - implement proof candidate validation into full inclusion/exclusion proofs
 - compute digests of independent subtrees in parallel during Hash

*/
