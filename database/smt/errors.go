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

import "github.com/tari-project/tari-sub006/common"

const (
	// ErrUnexpectedNodeType is returned when a traversal encounters a node
	// variant it is not prepared to handle. It indicates a defect in the
	// tree structure and is not recoverable.
	ErrUnexpectedNodeType = common.ConstError("unexpected node type")

	// ErrInvalidTerminalNode is returned when the slot at the end of a
	// traversal holds a branch where only a leaf or an empty node may
	// appear. It indicates a defect in the tree structure.
	ErrInvalidTerminalNode = common.ConstError("invalid terminal node")

	// ErrInvalidBranch is returned when the pruning depth computed during a
	// delete does not match the branches actually present on the path. It
	// indicates a defect in the tree structure.
	ErrInvalidBranch = common.ConstError("invalid branch")

	// ErrStaleHash is returned when a proof candidate is requested while a
	// digest on the key's path is stale. Callers recover by calling Hash on
	// the tree and retrying.
	ErrStaleHash = common.ConstError("stale hash")

	// ErrKeyExists is returned by insert-only operations when the key is
	// already present. The tree remains unchanged.
	ErrKeyExists = common.ConstError("key already exists")
)
