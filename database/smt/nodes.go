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
	"fmt"
	"io"

	"github.com/tari-project/tari-sub006/common"
)

// This file defines the node types forming a sparse Merkle tree (SMT). There
// are three different types of nodes:
//
//   - empty nodes  ... the absence of a subtree below a branch slot
//   - leaf nodes   ... terminal nodes storing one key/value pair
//   - branch nodes ... inner nodes splitting the key space by a single bit
//
// Nodes cache their own digest together with a staleness flag. Mutating
// operations mark every node on the modified path stale; the next hashing
// pass recomputes exactly the stale nodes and caches the results. Nodes are
// owned by exactly one parent (or the tree root slot), so restructuring the
// tree is implemented as moves of whole subtrees and never requires copying
// or sharing of node state.

// Key is the fixed-width identifier addressing a value in the tree. Keys are
// navigated bit by bit, starting from the most significant bit of the first
// byte at height 0.
type Key [32]byte

// ValueHash is the fixed-width digest stored in a leaf. It commits to some
// external payload; the tree never interprets its content.
type ValueHash [32]byte

// KeyFromBytes creates a Key from the given slice. Inputs shorter than the
// key width leave the remaining bytes zero; longer inputs are truncated.
func KeyFromBytes(data []byte) Key {
	var key Key
	copy(key[:], data)
	return key
}

// ValueHashFromBytes creates a ValueHash from the given slice, with the same
// length handling as KeyFromBytes.
func ValueHashFromBytes(data []byte) ValueHash {
	var value ValueHash
	copy(value[:], data)
	return value
}

// Node is a single node of a sparse Merkle tree. Exactly three
// implementations exist: EmptyNode, LeafNode, and BranchNode. The interface
// is closed; algorithms in this package dispatch exhaustively on these
// variants.
type Node interface {
	// IsEmpty returns true if this node marks the absence of a subtree.
	IsEmpty() bool

	// IsLeaf returns true if this node stores a key/value pair.
	IsLeaf() bool

	// IsBranch returns true if this node is an inner node with two children.
	IsBranch() bool

	// GetHash returns the node's cached digest together with a flag
	// indicating whether the digest is stale. A stale digest does not
	// reflect the node's current content and must not be trusted; fresh
	// digests are maintained by the hashing pass of the owning tree.
	GetHash() (common.Hash, bool)

	// check verifies the structural invariants of the subtree rooted at
	// this node, expecting the node at the given height with all keys below
	// it matching the given prefix. Reachable leaves are counted in leaves.
	check(prefix Key, height int, leaves *int) error

	// dumpTo writes a human-readable description of the subtree rooted at
	// this node to the given writer, for debugging.
	dumpTo(out io.Writer, indent string)
}

// direction selects one of the two children of a branch node.
type direction byte

const (
	dirLeft direction = iota
	dirRight
)

// other returns the opposite direction, selecting the sibling child.
func (d direction) other() direction {
	return d ^ 1
}

func (d direction) String() string {
	if d == dirLeft {
		return "left"
	}
	return "right"
}

// directionFor derives the traversal direction at the given height from the
// corresponding bit of the key: zero bits navigate left, one bits right.
func directionFor(key Key, height int) direction {
	return direction(bitAt(key, height))
}

// ----------------------------------------------------------------------------
//                               Node Base
// ----------------------------------------------------------------------------

// nodeBase is the shared part of leaf and branch nodes: the cached digest
// and its staleness flag. Nodes start out stale and receive their first
// digest from the next hashing pass visiting them.
type nodeBase struct {
	hash  common.Hash
	stale bool
}

func newNodeBase() nodeBase {
	return nodeBase{stale: true}
}

// GetHash returns the cached digest and whether it is stale.
func (n *nodeBase) GetHash() (common.Hash, bool) {
	return n.hash, n.stale
}

// setHash caches the given digest and clears the stale flag.
func (n *nodeBase) setHash(hash common.Hash) {
	n.hash = hash
	n.stale = false
}

// markStale invalidates the cached digest.
func (n *nodeBase) markStale() {
	n.stale = true
}

// ----------------------------------------------------------------------------
//                               Empty Node
// ----------------------------------------------------------------------------

// EmptyNode is the node type representing the absence of a subtree below a
// branch slot, and the root of an empty tree. Empty nodes have no state and
// can thus not be modified; their digest is the constant zero hash and is
// never stale.
type EmptyNode struct{}

func (EmptyNode) IsEmpty() bool {
	return true
}

func (EmptyNode) IsLeaf() bool {
	return false
}

func (EmptyNode) IsBranch() bool {
	return false
}

func (EmptyNode) GetHash() (common.Hash, bool) {
	return common.Hash{}, false
}

func (EmptyNode) check(Key, int, *int) error {
	return nil
}

func (EmptyNode) dumpTo(out io.Writer, indent string) {
	fmt.Fprintf(out, "%s-empty-\n", indent)
}

// ----------------------------------------------------------------------------
//                               Leaf Node
// ----------------------------------------------------------------------------

// LeafNode stores a single key/value pair. Its digest commits to both the
// key and the value; replacing the value in place invalidates the digest.
type LeafNode struct {
	nodeBase
	key   Key
	value ValueHash
}

func newLeafNode(key Key, value ValueHash) *LeafNode {
	return &LeafNode{nodeBase: newNodeBase(), key: key, value: value}
}

// Key returns the key stored in this leaf.
func (n *LeafNode) Key() Key {
	return n.key
}

// Value returns the value digest stored in this leaf.
func (n *LeafNode) Value() ValueHash {
	return n.value
}

func (n *LeafNode) setValue(value ValueHash) {
	n.value = value
	n.markStale()
}

func (n *LeafNode) IsEmpty() bool {
	return false
}

func (n *LeafNode) IsLeaf() bool {
	return true
}

func (n *LeafNode) IsBranch() bool {
	return false
}

func (n *LeafNode) check(prefix Key, height int, leaves *int) error {
	*leaves++
	if got := maskKey(n.key, height); got != prefix {
		return fmt.Errorf("leaf %x misplaced at height %d, prefix %x does not match %x", n.key, height, got, prefix)
	}
	return nil
}

func (n *LeafNode) dumpTo(out io.Writer, indent string) {
	fmt.Fprintf(out, "%sLeaf (hash: %s): %x => %x\n", indent, formatHashForDump(n.hash, n.stale), n.key, n.value)
}

// ----------------------------------------------------------------------------
//                               Branch Node
// ----------------------------------------------------------------------------

// BranchNode is an inner node splitting the key space below it by the bit at
// its height: keys with a zero bit continue in the left child, keys with a
// one bit in the right child. The prefix field retains the bits all keys
// below this node share, in masked form (every bit at or above the node's
// height is zero), so that the node's digest is independent of the key whose
// insertion created it. At least one of the two children is non-empty.
type BranchNode struct {
	nodeBase
	height int
	prefix Key
	left   Node
	right  Node
}

func newBranchNode(height int, key Key) *BranchNode {
	return &BranchNode{
		nodeBase: newNodeBase(),
		height:   height,
		prefix:   maskKey(key, height),
		left:     EmptyNode{},
		right:    EmptyNode{},
	}
}

// Height returns the number of key bits consumed on the path from the root
// to this node, which is also the bit position this node splits on.
func (n *BranchNode) Height() int {
	return n.height
}

// Prefix returns the key bits shared by all keys below this node, masked to
// the node's height.
func (n *BranchNode) Prefix() Key {
	return n.prefix
}

// Left returns the child holding all keys with a zero bit at this node's
// height.
func (n *BranchNode) Left() Node {
	return n.left
}

// Right returns the child holding all keys with a one bit at this node's
// height.
func (n *BranchNode) Right() Node {
	return n.right
}

// child returns the child node in the given direction.
func (n *BranchNode) child(dir direction) Node {
	if dir == dirLeft {
		return n.left
	}
	return n.right
}

// setChild replaces the child in the given direction. The branch's digest no
// longer reflects its content afterwards, so the node is marked stale.
func (n *BranchNode) setChild(dir direction, node Node) {
	if dir == dirLeft {
		n.left = node
	} else {
		n.right = node
	}
	n.markStale()
}

func (n *BranchNode) IsEmpty() bool {
	return false
}

func (n *BranchNode) IsLeaf() bool {
	return false
}

func (n *BranchNode) IsBranch() bool {
	return true
}

func (n *BranchNode) check(prefix Key, height int, leaves *int) error {
	errs := []error{}
	if n.height != height {
		errs = append(errs, fmt.Errorf("invalid branch height, wanted %d, got %d", height, n.height))
	}
	if n.prefix != prefix {
		errs = append(errs, fmt.Errorf("invalid branch prefix at height %d, wanted %x, got %x", height, prefix, n.prefix))
	}
	if n.left.IsEmpty() && n.right.IsEmpty() {
		errs = append(errs, fmt.Errorf("branch at height %d has two empty children", height))
	}
	if height >= keyBits {
		errs = append(errs, fmt.Errorf("branch height %d exceeds key width", height))
		return errors.Join(errs...)
	}
	errs = append(errs, n.left.check(prefix, height+1, leaves))
	errs = append(errs, n.right.check(withBit(prefix, height), height+1, leaves))
	return errors.Join(errs...)
}

func (n *BranchNode) dumpTo(out io.Writer, indent string) {
	fmt.Fprintf(out, "%sBranch (height: %d, prefix: %x, hash: %s)\n", indent, n.height, n.prefix, formatHashForDump(n.hash, n.stale))
	n.left.dumpTo(out, indent+"    ")
	n.right.dumpTo(out, indent+"    ")
}

func formatHashForDump(hash common.Hash, stale bool) string {
	if stale {
		return "-stale-"
	}
	return fmt.Sprintf("0x%x", hash)
}
