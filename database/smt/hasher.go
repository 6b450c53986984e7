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

//go:generate mockgen -source hasher.go -destination hasher_mocks.go -package smt

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"sync"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"

	"github.com/tari-project/tari-sub006/common"
)

// ----------------------------------------------------------------------------
//                             Hash Algorithms
// ----------------------------------------------------------------------------

// HashAlgorithm is a configuration token selecting the 256-bit digest
// function used for all node hashing within one tree. Trees with different
// algorithms produce incompatible digests for identical content.
type HashAlgorithm struct {
	Name         string
	createHasher func() hash.Hash
}

func (a HashAlgorithm) String() string {
	return a.Name
}

// Blake2b256Hashing computes node digests using the unkeyed 256-bit variant
// of Blake2b. It is the default algorithm for new trees.
var Blake2b256Hashing = HashAlgorithm{
	Name:         "Blake2b-256",
	createHasher: newBlake2bHasher,
}

// Sha256Hashing computes node digests using SHA-256.
var Sha256Hashing = HashAlgorithm{
	Name:         "SHA-256",
	createHasher: sha256.New,
}

// Keccak256Hashing computes node digests using the legacy Keccak-256
// function as used by Ethereum.
var Keccak256Hashing = HashAlgorithm{
	Name:         "Keccak-256",
	createHasher: sha3.NewLegacyKeccak256,
}

func newBlake2bHasher() hash.Hash {
	hasher, err := blake2b.New256(nil)
	if err != nil {
		// blake2b only rejects over-long keys; there is none here
		panic(fmt.Sprintf("failed to create blake2b hasher: %v", err))
	}
	return hasher
}

// ----------------------------------------------------------------------------
//                             Node Digest Rules
// ----------------------------------------------------------------------------

// hasher computes the domain-separated digests of individual tree nodes. It
// is the unit substituted by tests measuring which digests a tree operation
// actually recomputes.
type hasher interface {
	// hashLeaf computes the digest committing to a single key/value pair.
	hashLeaf(key Key, value ValueHash) common.Hash

	// hashBranch computes the digest committing to an inner node, covering
	// its position in the tree and the digests of both children.
	hashBranch(height int, prefix Key, left, right common.Hash) common.Hash
}

// Digest inputs are domain-separated by a single prefix byte so that a leaf
// can never be confused with a branch of coincidentally equal layout.
const (
	leafHashPrefix   = byte('V')
	branchHashPrefix = byte('B')
)

// directHasher derives node digests directly from the node content using a
// pool of reusable states of the configured algorithm.
type directHasher struct {
	pool *sync.Pool
}

func newDirectHasher(algorithm HashAlgorithm) directHasher {
	create := algorithm.createHasher
	return directHasher{pool: &sync.Pool{New: func() any { return create() }}}
}

func (h directHasher) hashLeaf(key Key, value ValueHash) common.Hash {
	hasher := h.pool.Get().(hash.Hash)
	hasher.Reset()
	hasher.Write([]byte{leafHashPrefix})
	hasher.Write(key[:])
	hasher.Write(value[:])
	var res common.Hash
	hasher.Sum(res[:0])
	h.pool.Put(hasher)
	return res
}

func (h directHasher) hashBranch(height int, prefix Key, left, right common.Hash) common.Hash {
	hasher := h.pool.Get().(hash.Hash)
	hasher.Reset()
	hasher.Write([]byte{branchHashPrefix, byte(height)})
	hasher.Write(prefix[:])
	hasher.Write(left[:])
	hasher.Write(right[:])
	var res common.Hash
	hasher.Sum(res[:0])
	h.pool.Put(hasher)
	return res
}

// ----------------------------------------------------------------------------
//                             Hashing Pass
// ----------------------------------------------------------------------------

// updateNodeHashes recomputes and caches the digests of all stale nodes in
// the subtree rooted at the given node and returns the subtree's digest.
// Subtrees with a fresh root digest are skipped entirely: every mutation
// marks the full path from the tree root stale, so a fresh node implies a
// fresh subtree.
func updateNodeHashes(node Node, hasher hasher) (common.Hash, error) {
	switch cur := node.(type) {
	case EmptyNode:
		return common.Hash{}, nil
	case *LeafNode:
		if hash, stale := cur.GetHash(); !stale {
			return hash, nil
		}
		hash := hasher.hashLeaf(cur.key, cur.value)
		cur.setHash(hash)
		return hash, nil
	case *BranchNode:
		if hash, stale := cur.GetHash(); !stale {
			return hash, nil
		}
		left, err := updateNodeHashes(cur.left, hasher)
		if err != nil {
			return common.Hash{}, err
		}
		right, err := updateNodeHashes(cur.right, hasher)
		if err != nil {
			return common.Hash{}, err
		}
		hash := hasher.hashBranch(cur.height, cur.prefix, left, right)
		cur.setHash(hash)
		return hash, nil
	default:
		return common.Hash{}, fmt.Errorf("%w: %T", ErrUnexpectedNodeType, node)
	}
}
