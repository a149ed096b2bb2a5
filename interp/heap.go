/*
 * pcode - Interpreter: heap allocator backing OSOP NEW/DISPOSE
 *
 * Copyright 2026, pcode contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package interp

// heapBlock is one free-list node. Blocks are addressed by their offset
// from hpb (the heap's base), not by absolute machine address, so the
// free list is independent of where the heap region lands in memory.
type heapBlock struct {
	offset uint32
	size   uint32
	next   *heapBlock
}

// heap is a minimal first-fit free-list allocator over the interpreter's
// own hpb..hsp region (§3.3, §4.5 OSOP NEW/DISPOSE). It is not a
// general-purpose allocator: it only ever serves the P-machine's own
// NEW/DISPOSE calls, and never returns memory to the OS.
type heap struct {
	size uint32
	free *heapBlock
}

func newHeap(size uint32) *heap {
	return &heap{size: size, free: &heapBlock{offset: 0, size: size}}
}

// alloc reserves n bytes and returns their offset from hpb, or
// ErrHeapExhausted if no free block is large enough.
func (h *heap) alloc(n uint32) (uint32, error) {
	if n == 0 {
		n = 1
	}
	var prev *heapBlock
	for b := h.free; b != nil; b = b.next {
		if b.size >= n {
			offset := b.offset
			if b.size == n {
				if prev == nil {
					h.free = b.next
				} else {
					prev.next = b.next
				}
			} else {
				b.offset += n
				b.size -= n
			}
			return offset, nil
		}
		prev = b
	}
	return 0, ErrHeapExhausted
}

// dispose returns a block to the free list, coalescing with neighbors that
// border it so small DISPOSE/NEW cycles do not fragment the heap.
func (h *heap) dispose(offset, n uint32) {
	if n == 0 {
		n = 1
	}
	nb := &heapBlock{offset: offset, size: n}

	if h.free == nil || nb.offset+nb.size <= h.free.offset {
		nb.next = h.free
		h.free = nb
		h.coalesce(nb)
		return
	}

	cur := h.free
	for cur.next != nil && cur.next.offset < nb.offset {
		cur = cur.next
	}
	nb.next = cur.next
	cur.next = nb
	h.coalesce(cur)
	h.coalesce(nb)
}

// coalesce merges b with as many immediately-adjacent successors as
// border it, cascading past more than one freed neighbor at a time.
func (h *heap) coalesce(b *heapBlock) {
	for b.next != nil && b.offset+b.size == b.next.offset {
		b.size += b.next.size
		b.next = b.next.next
	}
}
