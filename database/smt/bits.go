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

import "math/bits"

// keyBits is the number of usable bit positions in a key, and thereby the
// exclusive upper bound of branch heights.
const keyBits = len(Key{}) * 8

// bitAt returns the key's bit at the given height, where height 0 addresses
// the most significant bit of the first byte.
func bitAt(key Key, height int) byte {
	return (key[height/8] >> (7 - height%8)) & 1
}

// divergenceHeight returns the smallest height at or above from at which
// the two keys' bits differ, or -1 if no such height exists. Callers must
// guarantee that the keys agree on all bits below from.
func divergenceHeight(a, b Key, from int) int {
	for i := from / 8; i < len(a); i++ {
		if diff := a[i] ^ b[i]; diff != 0 {
			return i*8 + bits.LeadingZeros8(diff)
		}
	}
	return -1
}

// maskKey retains the first height bits of the given key and zeroes all
// remaining ones. Branches store their key prefix in this form so that the
// digest input of a branch never depends on which key created it.
func maskKey(key Key, height int) Key {
	var res Key
	full := height / 8
	copy(res[:full], key[:full])
	if rem := height % 8; rem > 0 {
		res[full] = key[full] & (0xFF << (8 - rem))
	}
	return res
}

// withBit returns a copy of the given key with the bit at the given height
// set to one.
func withBit(key Key, height int) Key {
	key[height/8] |= 1 << (7 - height%8)
	return key
}
