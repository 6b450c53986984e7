// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package smt_test

import (
	"fmt"
	"log"

	"github.com/tari-project/tari-sub006/database/smt"
)

func ExampleSparseMerkleTree() {
	tree := smt.NewSparseMerkleTree(smt.Blake2b256Hashing)

	// Track the digests of two stored values.
	if err := tree.Insert(smt.Key{1}, smt.ValueHash{0xaa}); err != nil {
		log.Fatalf("cannot insert entry: %v", err)
	}
	if err := tree.Insert(smt.Key{2}, smt.ValueHash{0xbb}); err != nil {
		log.Fatalf("cannot insert entry: %v", err)
	}
	fmt.Printf("size: %d\n", tree.Size())

	_, found, err := tree.Get(smt.Key{1})
	if err != nil {
		log.Fatalf("cannot get entry: %v", err)
	}
	fmt.Printf("contains key 1: %t\n", found)

	// Obtain the root commitment and proof material for one key.
	before, err := tree.Hash()
	if err != nil {
		log.Fatalf("cannot hash tree: %v", err)
	}
	candidate, err := tree.BuildProofCandidate(smt.Key{1})
	if err != nil {
		log.Fatalf("cannot build proof candidate: %v", err)
	}
	fmt.Printf("proof path length: %d\n", len(candidate.Siblings))

	// Removing and restoring an entry restores the commitment.
	value, _, err := tree.Delete(smt.Key{2})
	if err != nil {
		log.Fatalf("cannot delete entry: %v", err)
	}
	if err := tree.Insert(smt.Key{2}, value); err != nil {
		log.Fatalf("cannot re-insert entry: %v", err)
	}
	after, err := tree.Hash()
	if err != nil {
		log.Fatalf("cannot hash tree: %v", err)
	}
	fmt.Printf("commitment restored: %t\n", before == after)

	// Output:
	// size: 2
	// contains key 1: true
	// proof path length: 7
	// commitment restored: true
}
