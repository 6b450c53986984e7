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
	"io"

	"github.com/tari-project/tari-sub006/common"
)

// SparseMerkleTree is an in-memory sparse Merkle tree over 256-bit keys,
// mapping each key to a 256-bit value digest. The tree is stored in its
// compressed form: branch nodes exist only where keys actually diverge or
// along the chain of bits leading there, and every leaf is placed at the
// first bit distinguishing its key from all others. The resulting shape is
// canonical: it depends only on the set of contained keys, not on the order
// of insertions and deletions that produced it.
//
// Node digests are cached and only recomputed on demand. Mutations mark the
// affected root-to-leaf path stale; a subsequent Hash() call recomputes the
// stale digests bottom-up while reusing the cached digests of untouched
// subtrees.
//
// Instances are not safe for concurrent use.
type SparseMerkleTree struct {
	root      Node
	size      int
	hasher    hasher
	algorithm HashAlgorithm
}

// NewSparseMerkleTree creates an empty tree computing node digests with the
// given algorithm.
func NewSparseMerkleTree(algorithm HashAlgorithm) *SparseMerkleTree {
	return &SparseMerkleTree{
		root:      EmptyNode{},
		hasher:    newDirectHasher(algorithm),
		algorithm: algorithm,
	}
}

// Algorithm returns the hash algorithm used for node digests.
func (t *SparseMerkleTree) Algorithm() HashAlgorithm {
	return t.algorithm
}

// Size returns the number of key/value pairs in the tree.
func (t *SparseMerkleTree) Size() int {
	return t.size
}

// Root returns the root node of the tree. The returned node is owned by the
// tree and must not be modified.
func (t *SparseMerkleTree) Root() Node {
	return t.root
}

// ----------------------------------------------------------------------------
//                                 Lookups
// ----------------------------------------------------------------------------

// Get retrieves the value digest stored for the given key. The second return
// value indicates whether the key is present. Retrieving an absent key is
// not an error.
func (t *SparseMerkleTree) Get(key Key) (ValueHash, bool, error) {
	current := t.root
	for {
		switch node := current.(type) {
		case EmptyNode:
			return ValueHash{}, false, nil
		case *LeafNode:
			if node.key == key {
				return node.value, true, nil
			}
			return ValueHash{}, false, nil
		case *BranchNode:
			current = node.child(directionFor(key, node.height))
		default:
			return ValueHash{}, false, fmt.Errorf("%w: %T", ErrUnexpectedNodeType, current)
		}
	}
}

// Contains tests whether the given key is present in the tree.
func (t *SparseMerkleTree) Contains(key Key) (bool, error) {
	_, found, err := t.Get(key)
	return found, err
}

// ----------------------------------------------------------------------------
//                                 Updates
// ----------------------------------------------------------------------------

// Upsert stores the given value digest for the given key, inserting a new
// leaf or overwriting the value of an existing one. It returns the value
// digest the key was mapped to before, and whether the operation was an
// update of an existing key. The digests of all nodes on the path to the
// affected leaf are marked stale.
func (t *SparseMerkleTree) Upsert(key Key, value ValueHash) (ValueHash, bool, error) {
	switch root := t.root.(type) {
	case EmptyNode:
		t.root = newLeafNode(key, value)
		t.size++
		return ValueHash{}, false, nil
	case *LeafNode:
		if root.key == key {
			previous := root.value
			root.setValue(value)
			return previous, true, nil
		}
		branch, err := buildLeafBranch(root, newLeafNode(key, value), 0)
		if err != nil {
			return ValueHash{}, false, err
		}
		t.root = branch
		t.size++
		return ValueHash{}, false, nil
	case *BranchNode:
		terminal, err := t.findTerminalBranch(key, true)
		if err != nil {
			return ValueHash{}, false, err
		}
		return t.upsertAtTerminal(terminal, key, value)
	default:
		return ValueHash{}, false, fmt.Errorf("%w: %T", ErrUnexpectedNodeType, t.root)
	}
}

// upsertAtTerminal completes an upsert below the parent branch located by a
// terminal-branch search for the given key.
func (t *SparseMerkleTree) upsertAtTerminal(terminal terminalBranch, key Key, value ValueHash) (ValueHash, bool, error) {
	switch node := terminal.terminalNode().(type) {
	case EmptyNode:
		terminal.setTerminalNode(newLeafNode(key, value))
		t.size++
		return ValueHash{}, false, nil
	case *LeafNode:
		if node.key == key {
			previous := node.value
			node.setValue(value)
			return previous, true, nil
		}
		branch, err := buildLeafBranch(node, newLeafNode(key, value), terminal.parent.height+1)
		if err != nil {
			return ValueHash{}, false, err
		}
		terminal.setTerminalNode(branch)
		t.size++
		return ValueHash{}, false, nil
	default:
		return ValueHash{}, false, fmt.Errorf("%w: %T", ErrInvalidTerminalNode, node)
	}
}

// buildLeafBranch combines two leaves with distinct keys into a subtree
// rooted at the given height: a branch at the first bit distinguishing the
// two keys holding both leaves, extended upwards to the requested height by
// a chain of branches with one empty child each. Both keys must agree on all
// bits above the given height.
func buildLeafBranch(existing, added *LeafNode, height int) (*BranchNode, error) {
	divergence := divergenceHeight(existing.key, added.key, height)
	if divergence < 0 {
		return nil, fmt.Errorf("%w: keys %x and %x do not diverge", ErrInvalidBranch, existing.key, added.key)
	}
	branch := newBranchNode(divergence, added.key)
	branch.setChild(directionFor(existing.key, divergence), existing)
	branch.setChild(directionFor(added.key, divergence), added)
	for h := divergence - 1; h >= height; h-- {
		parent := newBranchNode(h, added.key)
		parent.setChild(directionFor(added.key, h), branch)
		branch = parent
	}
	return branch, nil
}

// Insert stores the given value digest for the given key, which must not be
// present yet. Inserting an already present key fails with ErrKeyExists and
// leaves the tree unchanged.
func (t *SparseMerkleTree) Insert(key Key, value ValueHash) error {
	exists, err := t.Contains(key)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %x", ErrKeyExists, key)
	}
	_, _, err = t.Upsert(key, value)
	return err
}

// ----------------------------------------------------------------------------
//                                 Deletion
// ----------------------------------------------------------------------------

// Delete removes the given key from the tree. It returns the value digest
// the key was mapped to, and whether the key was present. Deleting an absent
// key is not an error and leaves the tree unchanged, including all cached
// digests.
//
// Removing a leaf prunes all branches that would be left with two empty
// children and re-attaches the leaf's sibling subtree at the pruned chain's
// top. Branch siblings are never moved to a lower height; their parent
// branch remains in place with an empty slot instead.
func (t *SparseMerkleTree) Delete(key Key) (ValueHash, bool, error) {
	switch root := t.root.(type) {
	case EmptyNode:
		return ValueHash{}, false, nil
	case *LeafNode:
		if root.key != key {
			return ValueHash{}, false, nil
		}
		previous := root.value
		t.root = EmptyNode{}
		t.size--
		return previous, true, nil
	case *BranchNode:
		return t.deleteBelowRoot(key)
	default:
		return ValueHash{}, false, fmt.Errorf("%w: %T", ErrUnexpectedNodeType, t.root)
	}
}

// deleteBelowRoot removes the given key from a tree with a branch root. The
// first traversal only locates the key's terminal branch and must not mark
// anything stale, since the key may turn out to be absent.
func (t *SparseMerkleTree) deleteBelowRoot(key Key) (ValueHash, bool, error) {
	terminal, err := t.findTerminalBranch(key, false)
	if err != nil {
		return ValueHash{}, false, err
	}
	leaf, ok := terminal.terminalNode().(*LeafNode)
	if !ok || leaf.key != key {
		return ValueHash{}, false, nil
	}
	previous := leaf.value
	if terminal.siblingNode().IsBranch() {
		// The sibling stays at its height, only the leaf's slot is cleared.
		// A second traversal marks the path to the modified branch stale.
		terminal.setTerminalNode(EmptyNode{})
		if _, err := t.findTerminalBranch(key, true); err != nil {
			return ValueHash{}, false, err
		}
	} else if err := t.pruneAndReattach(key, terminal); err != nil {
		return ValueHash{}, false, err
	}
	t.size--
	return previous, true, nil
}

// pruneAndReattach drops the terminal branch of a deleted leaf together with
// the chain of branches above it that only connected this leaf to the rest
// of the tree, and re-attaches the leaf's sibling in place of the chain's
// top. The branches to prune are those whose other child is empty, read from
// the traversal's empty-sibling records bottom-up.
func (t *SparseMerkleTree) pruneAndReattach(key Key, terminal terminalBranch) error {
	orphan := terminal.siblingNode()
	depth := len(terminal.emptySiblings)
	for depth > 0 && terminal.emptySiblings[depth-1] {
		depth--
	}
	if depth == 0 {
		t.root = orphan
		return nil
	}
	branch, ok := t.root.(*BranchNode)
	if !ok {
		return fmt.Errorf("%w: root is %T, wanted branch", ErrUnexpectedNodeType, t.root)
	}
	branch.markStale()
	for i := 1; i < depth; i++ {
		next, ok := branch.child(directionFor(key, branch.height)).(*BranchNode)
		if !ok {
			return fmt.Errorf("%w: pruning depth %d exceeds the traversed path", ErrInvalidBranch, depth)
		}
		branch = next
		branch.markStale()
	}
	branch.setChild(directionFor(key, branch.height), orphan)
	return nil
}

// ----------------------------------------------------------------------------
//                                Traversal
// ----------------------------------------------------------------------------

// terminalBranch is the result of a terminal-branch search: the deepest
// branch on a key's path whose child in the key's direction is not a branch.
// That child, the terminal node, is where the key resides if present. The
// emptySiblings list records, for every branch the search descended through,
// whether the child opposite the descent was empty; it drives the pruning
// decisions of Delete.
type terminalBranch struct {
	parent        *BranchNode
	direction     direction
	emptySiblings []bool
}

// terminalNode returns the leaf or empty node the search terminated at.
func (t *terminalBranch) terminalNode() Node {
	return t.parent.child(t.direction)
}

// siblingNode returns the sibling of the terminal node.
func (t *terminalBranch) siblingNode() Node {
	return t.parent.child(t.direction.other())
}

// setTerminalNode replaces the terminal node, marking the parent stale.
func (t *terminalBranch) setTerminalNode(node Node) {
	t.parent.setChild(t.direction, node)
}

// findTerminalBranch descends from the root along the given key's path to
// the key's terminal branch. The root must be a branch node. If markStale is
// set, every visited branch is marked stale, anticipating a mutation of the
// terminal node.
func (t *SparseMerkleTree) findTerminalBranch(key Key, markStale bool) (terminalBranch, error) {
	branch, ok := t.root.(*BranchNode)
	if !ok {
		return terminalBranch{}, fmt.Errorf("%w: root is %T, wanted branch", ErrUnexpectedNodeType, t.root)
	}
	cursor := terminalBranch{}
	for {
		if markStale {
			branch.markStale()
		}
		dir := directionFor(key, branch.height)
		next, ok := branch.child(dir).(*BranchNode)
		if !ok {
			cursor.parent = branch
			cursor.direction = dir
			return cursor, nil
		}
		cursor.emptySiblings = append(cursor.emptySiblings, branch.child(dir.other()).IsEmpty())
		branch = next
	}
}

// ----------------------------------------------------------------------------
//                                 Hashing
// ----------------------------------------------------------------------------

// Hash returns the root digest of the tree, recomputing the digests of all
// nodes modified since the last call. The digest of an empty tree is the
// zero hash.
func (t *SparseMerkleTree) Hash() (common.Hash, error) {
	return updateNodeHashes(t.root, t.hasher)
}

// UnsafeHash returns the cached root digest without recomputing anything.
// The result is outdated if the tree was modified since the last Hash call;
// use GetHash on the root node to detect this.
func (t *SparseMerkleTree) UnsafeHash() common.Hash {
	hash, _ := t.root.GetHash()
	return hash
}

// ----------------------------------------------------------------------------
//                               Diagnostics
// ----------------------------------------------------------------------------

// Check verifies the structural invariants of the tree: branch heights and
// prefixes consistent with their position, no branch with two empty
// children, every leaf placed on its key's path, and the tree size matching
// the number of leaves. It is intended for tests and debugging.
func (t *SparseMerkleTree) Check() error {
	leaves := 0
	if err := t.root.check(Key{}, 0, &leaves); err != nil {
		return err
	}
	if leaves != t.size {
		return fmt.Errorf("invalid tree size, wanted %d, got %d", leaves, t.size)
	}
	return nil
}

// Dump prints the tree structure to the given writer for debugging.
func (t *SparseMerkleTree) Dump(out io.Writer) {
	fmt.Fprintf(out, "SparseMerkleTree (algorithm: %s, size: %d)\n", t.algorithm, t.size)
	t.root.dumpTo(out, "    ")
}
