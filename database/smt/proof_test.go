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
	"errors"
	"testing"

	"golang.org/x/exp/slices"

	"github.com/tari-project/tari-sub006/common"
)

func TestBuildProofCandidate_RequiresAFullyHashedTree(t *testing.T) {
	tree := NewSparseMerkleTree(Blake2b256Hashing)
	for _, key := range []Key{{0x00}, {0x1F}} {
		if err := tree.Insert(key, ValueHash{1}); err != nil {
			t.Fatalf("failed to insert %x: %v", key, err)
		}
	}

	// Right after the inserts the path digests are stale.
	if _, err := tree.BuildProofCandidate(Key{0x1F}); !errors.Is(err, ErrStaleHash) {
		t.Fatalf("proof construction on a stale tree must fail with ErrStaleHash, got %v", err)
	}

	// Hashing the tree resolves the failure.
	if _, err := tree.Hash(); err != nil {
		t.Fatalf("hashing failed: %v", err)
	}
	if _, err := tree.BuildProofCandidate(Key{0x1F}); err != nil {
		t.Errorf("proof construction on a hashed tree failed: %v", err)
	}

	// Any further mutation makes proofs unavailable again.
	if _, _, err := tree.Upsert(Key{0x40}, ValueHash{2}); err != nil {
		t.Fatalf("failed to add entry: %v", err)
	}
	if _, err := tree.BuildProofCandidate(Key{0x1F}); !errors.Is(err, ErrStaleHash) {
		t.Errorf("proof construction after a mutation must fail with ErrStaleHash, got %v", err)
	}
}

func TestBuildProofCandidate_CollectsSiblingDigestsInRootToLeafOrder(t *testing.T) {
	tree := NewSparseMerkleTree(Blake2b256Hashing)
	for _, key := range []Key{{0x00}, {0x1F}, {0x40}} {
		if err := tree.Insert(key, ValueHash{key[0]}); err != nil {
			t.Fatalf("failed to insert %x: %v", key, err)
		}
	}
	if _, err := tree.Hash(); err != nil {
		t.Fatalf("hashing failed: %v", err)
	}

	// The path of 0x1F.. descends through branches at heights 0 to 3; its
	// siblings are two empty slots, the 0x40.. leaf, and the 0x00.. leaf.
	b0 := tree.Root().(*BranchNode)
	b1 := b0.Left().(*BranchNode)
	b3 := b1.Left().(*BranchNode).Left().(*BranchNode)
	leaf40, _ := b1.Right().GetHash()
	leaf00, _ := b3.Left().GetHash()
	want := []common.Hash{{}, leaf40, {}, leaf00}

	candidate, err := tree.BuildProofCandidate(Key{0x1F})
	if err != nil {
		t.Fatalf("proof construction failed: %v", err)
	}
	if !slices.Equal(candidate.Siblings, want) {
		t.Errorf("unexpected sibling digests, wanted %x, got %x", want, candidate.Siblings)
	}
	if candidate.Leaf == nil || candidate.Leaf.Key() != (Key{0x1F}) {
		t.Errorf("candidate must carry the target leaf, got %v", candidate.Leaf)
	}
}

func TestBuildProofCandidate_AbsentKeyTerminatesInAnEmptySlot(t *testing.T) {
	tree := NewSparseMerkleTree(Blake2b256Hashing)
	for _, key := range []Key{{0x00}, {0x1F}, {0x40}} {
		if err := tree.Insert(key, ValueHash{key[0]}); err != nil {
			t.Fatalf("failed to insert %x: %v", key, err)
		}
	}
	if _, err := tree.Hash(); err != nil {
		t.Fatalf("hashing failed: %v", err)
	}

	// 0x20.. leaves the built paths at the empty slot below the branch at
	// height 2; the candidate proves the key's absence.
	candidate, err := tree.BuildProofCandidate(Key{0x20})
	if err != nil {
		t.Fatalf("proof construction failed: %v", err)
	}
	if candidate.Leaf != nil {
		t.Errorf("candidate for a key ending in an empty slot must have no leaf, got %v", candidate.Leaf)
	}
	if got, want := len(candidate.Siblings), 3; got != want {
		t.Errorf("unexpected number of siblings, wanted %d, got %d", want, got)
	}
}

func TestBuildProofCandidate_AbsentKeyTerminatesAtAForeignLeaf(t *testing.T) {
	tree := NewSparseMerkleTree(Blake2b256Hashing)
	for _, key := range []Key{{0x00}, {0x1F}, {0x40}} {
		if err := tree.Insert(key, ValueHash{key[0]}); err != nil {
			t.Fatalf("failed to insert %x: %v", key, err)
		}
	}
	if _, err := tree.Hash(); err != nil {
		t.Fatalf("hashing failed: %v", err)
	}

	// 0x1E.. shares the full built path of 0x1F.. and terminates at its
	// leaf; the foreign leaf in the candidate proves the key's absence.
	candidate, err := tree.BuildProofCandidate(Key{0x1E})
	if err != nil {
		t.Fatalf("proof construction failed: %v", err)
	}
	if candidate.Leaf == nil || candidate.Leaf.Key() != (Key{0x1F}) {
		t.Errorf("candidate must carry the leaf occupying the path, got %v", candidate.Leaf)
	}
}

func TestBuildProofCandidate_OnEmptyAndSingleLeafTrees(t *testing.T) {
	tree := NewSparseMerkleTree(Blake2b256Hashing)
	candidate, err := tree.BuildProofCandidate(Key{0x12})
	if err != nil {
		t.Fatalf("proof construction on empty tree failed: %v", err)
	}
	if len(candidate.Siblings) != 0 || candidate.Leaf != nil {
		t.Errorf("unexpected candidate for empty tree: %+v", candidate)
	}

	if err := tree.Insert(Key{0x12}, ValueHash{1}); err != nil {
		t.Fatalf("failed to insert entry: %v", err)
	}
	candidate, err = tree.BuildProofCandidate(Key{0x12})
	if err != nil {
		t.Fatalf("proof construction on single-leaf tree failed: %v", err)
	}
	if len(candidate.Siblings) != 0 {
		t.Errorf("a leaf root has no siblings, got %x", candidate.Siblings)
	}
	if candidate.Leaf == nil || candidate.Leaf.Key() != (Key{0x12}) {
		t.Errorf("candidate must carry the root leaf, got %v", candidate.Leaf)
	}
}

func TestBuildProofCandidate_DoesNotModifyTheTree(t *testing.T) {
	tree := NewSparseMerkleTree(Blake2b256Hashing)
	for _, key := range []Key{{0x00}, {0x1F}, {0x40}} {
		if err := tree.Insert(key, ValueHash{key[0]}); err != nil {
			t.Fatalf("failed to insert %x: %v", key, err)
		}
	}
	before, err := tree.Hash()
	if err != nil {
		t.Fatalf("hashing failed: %v", err)
	}
	if _, err := tree.BuildProofCandidate(Key{0x1F}); err != nil {
		t.Fatalf("proof construction failed: %v", err)
	}
	if _, stale := tree.Root().GetHash(); stale {
		t.Errorf("proof construction must not mark anything stale")
	}
	if got := tree.UnsafeHash(); got != before {
		t.Errorf("unexpected digest after proof construction, wanted %x, got %x", before, got)
	}
}
