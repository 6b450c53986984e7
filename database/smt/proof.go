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

import (
	"fmt"

	"github.com/tari-project/tari-sub006/common"
)

// ProofCandidate is the raw material for a membership or exclusion proof of
// a single key: the digests of all sibling subtrees along the key's path in
// root-to-leaf order, and the leaf the path terminated at, if any. A nil
// Leaf indicates the path ended in an empty slot and the key is absent.
//
// The candidate is not a validated proof. Serializing it, pairing it with
// the root digest, and verifying it against the tree's digest rules is the
// responsibility of the surrounding proof machinery.
type ProofCandidate struct {
	Siblings []common.Hash
	Leaf     *LeafNode
}

// BuildProofCandidate collects the proof material for the given key. The
// tree must be fully hashed; encountering a branch with a stale digest fails
// with ErrStaleHash, which is resolved by calling Hash and retrying. The
// tree is not modified.
func (t *SparseMerkleTree) BuildProofCandidate(key Key) (ProofCandidate, error) {
	candidate := ProofCandidate{}
	current := t.root
	for {
		switch node := current.(type) {
		case EmptyNode:
			return candidate, nil
		case *LeafNode:
			candidate.Leaf = node
			return candidate, nil
		case *BranchNode:
			// A fresh branch digest covers the whole subtree, so the
			// cached sibling digest below it can be trusted as is.
			if _, stale := node.GetHash(); stale {
				return ProofCandidate{}, fmt.Errorf("%w: branch at height %d", ErrStaleHash, node.height)
			}
			dir := directionFor(key, node.height)
			sibling, _ := node.child(dir.other()).GetHash()
			candidate.Siblings = append(candidate.Siblings, sibling)
			current = node.child(dir)
		default:
			return ProofCandidate{}, fmt.Errorf("%w: %T", ErrUnexpectedNodeType, current)
		}
	}
}
