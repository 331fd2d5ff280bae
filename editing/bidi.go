package editing

// AdjustBidiBoundaries widens a flat-tree range so neither endpoint splits
// a deeper bidi run from its edge: a start sitting just after a deeper run
// moves back to that run's start, and an end sitting just before one moves
// forward to its end. Carets are returned unchanged.
func AdjustBidiBoundaries(sel Selection, layout Layout) Selection {
	if sel.Type() != RangeSelection || layout == nil {
		return sel
	}
	baseIsFirst := sel.IsBaseFirst()
	start, end := sel.Start(), sel.End()

	if before, after := layout.BidiLevels(start); after >= 0 && before > after {
		if p := layout.BidiRunEdge(start, false); !p.IsNull() {
			start = p
		}
	}
	if before, after := layout.BidiLevels(end); before >= 0 && after > before {
		if p := layout.BidiRunEdge(end, true); !p.IsNull() {
			end = p
		}
	}

	b := NewSelectionBuilderFrom(sel)
	if baseIsFirst {
		b.SetBaseAndExtent(start, end)
	} else {
		b.SetBaseAndExtent(end, start)
	}
	return b.Build()
}
