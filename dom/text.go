package dom

// Text represents a text node in the document.
type Text Node

// AsNode returns the underlying Node.
func (t *Text) AsNode() *Node {
	return (*Node)(t)
}

// Data returns the text content.
func (t *Text) Data() string {
	return t.data
}

// Length returns the length of the text content in bytes.
func (t *Text) Length() int {
	return len(t.data)
}

// SetData replaces the whole text content.
// This is equivalent to replaceData(0, length, data).
func (t *Text) SetData(data string) {
	t.replaceDataInternal(0, len(t.data), data)
}

// SubstringData extracts a substring of the text.
func (t *Text) SubstringData(offset, count int) string {
	data := t.data
	if offset < 0 || offset > len(data) {
		return ""
	}
	end := offset + count
	if end > len(data) {
		end = len(data)
	}
	return data[offset:end]
}

// AppendData appends a string to the text.
// This is equivalent to insertData(length, data).
func (t *Text) AppendData(data string) {
	t.replaceDataInternal(len(t.data), 0, data)
}

// InsertData inserts a string at the given offset.
// This is equivalent to replaceData(offset, 0, data).
func (t *Text) InsertData(offset int, data string) error {
	return t.ReplaceData(offset, 0, data)
}

// DeleteData deletes characters starting at the given offset.
// This is equivalent to replaceData(offset, count, "").
func (t *Text) DeleteData(offset, count int) error {
	return t.ReplaceData(offset, count, "")
}

// ReplaceData replaces count bytes starting at offset with data.
func (t *Text) ReplaceData(offset, count int, data string) error {
	if offset < 0 || offset > len(t.data) {
		return ErrIndexSize("The offset is greater than the node's length.")
	}
	if count < 0 {
		count = 0
	}
	// Clamp count to not exceed available characters
	if offset+count > len(t.data) {
		count = len(t.data) - offset
	}
	t.replaceDataInternal(offset, count, data)
	return nil
}

// replaceDataInternal implements the "replace data" algorithm. Observers see
// the edit after the data has changed so they can clamp to the new length.
func (t *Text) replaceDataInternal(offset, count int, data string) {
	current := t.data
	t.data = current[:offset] + data + current[offset+count:]

	n := t.AsNode()
	if doc := n.ownerDoc; doc != nil && n.IsConnected() {
		doc.notifyTextReplaced(n, offset, count, len(data))
	}
}

// SplitText splits this text node at the given offset.
// Returns the new text node containing the text after the offset.
func (t *Text) SplitText(offset int) (*Text, error) {
	data := t.data
	if offset < 0 || offset > len(data) {
		return nil, ErrIndexSize("The offset is greater than the node's length.")
	}

	n := t.AsNode()
	newNode := n.ownerDoc.CreateTextNode(data[offset:])

	// Insert new node after this one
	if parent := n.parentNode; parent != nil {
		parent.insertBefore(newNode, n.nextSibling)
	}
	t.data = data[:offset]

	if doc := n.ownerDoc; doc != nil && n.parentNode != nil && n.IsConnected() {
		doc.notifyTextNodeSplit(n)
	}
	return (*Text)(newNode), nil
}

// IsWhitespace returns true if the text consists only of ASCII whitespace.
func (t *Text) IsWhitespace() bool {
	for _, r := range t.data {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' && r != '\f' {
			return false
		}
	}
	return true
}
