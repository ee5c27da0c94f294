package audio

// The find helpers scan a recall list from its start and return the
// sub-slice beginning at the first match, nil if nothing matches. The
// result can be resliced past its head to continue the scan.

// FindType returns list starting at the first recall of type.
func FindType(list []*Recall, typ *Type) []*Recall {
	for i, r := range list {
		if r.Type() == typ {
			return list[i:]
		}
	}
	return nil
}

// FindTemplate returns list starting at the first template.
func FindTemplate(list []*Recall) []*Recall {
	for i, r := range list {
		if r.IsTemplate() {
			return list[i:]
		}
	}
	return nil
}

// TemplateFindType returns list starting at the first template of type.
func TemplateFindType(list []*Recall, typ *Type) []*Recall {
	for i, r := range list {
		if r.IsTemplate() && r.Type() == typ {
			return list[i:]
		}
	}
	return nil
}

// TemplateFindAllType returns list starting at the first template of any
// of types.
func TemplateFindAllType(list []*Recall, types ...*Type) []*Recall {
	for i, r := range list {
		if !r.IsTemplate() {
			continue
		}
		for _, typ := range types {
			if r.Type() == typ {
				return list[i:]
			}
		}
	}
	return nil
}

// FindTypeWithRecyclingContext returns list starting at the first recall
// of type whose run has exactly the context.
func FindTypeWithRecyclingContext(list []*Recall, typ *Type, ctx *RecyclingContext) []*Recall {
	for i, r := range list {
		if r.Type() == typ && r.RecallID() != nil && r.RecallID().RecyclingContext() == ctx {
			return list[i:]
		}
	}
	return nil
}

// FindRecyclingContext returns list starting at the first recall whose run
// has exactly the context. Recalls of ancestor contexts don't match.
func FindRecyclingContext(list []*Recall, ctx *RecyclingContext) []*Recall {
	for i, r := range list {
		if id := r.RecallID(); id != nil && id.RecyclingContext() == ctx {
			return list[i:]
		}
	}
	return nil
}

// FindProvider returns list starting at the first recall owned by
// provider. Provider is an *Audio or *Channel.
func FindProvider(list []*Recall, provider interface{}) []*Recall {
	for i, r := range list {
		if matchProvider(r, provider) {
			return list[i:]
		}
	}
	return nil
}

// TemplateFindProvider returns list starting at the first template owned
// by provider.
func TemplateFindProvider(list []*Recall, provider interface{}) []*Recall {
	for i, r := range list {
		if r.IsTemplate() && matchProvider(r, provider) {
			return list[i:]
		}
	}
	return nil
}

// FindProviderWithRecyclingContext returns list starting at the first
// recall owned by provider with exactly the context.
func FindProviderWithRecyclingContext(list []*Recall, provider interface{}, ctx *RecyclingContext) []*Recall {
	for {
		list = FindProvider(list, provider)
		if len(list) == 0 {
			return nil
		}
		if id := list[0].RecallID(); id != nil && id.RecyclingContext() == ctx {
			return list
		}
		list = list[1:]
	}
}

// GetByEffect returns all recalls bound to effect of filename.
func GetByEffect(list []*Recall, filename, effect string) []*Recall {
	var result []*Recall
	for _, r := range list {
		if r.Filename() == filename && r.Effect() == effect {
			result = append(result, r)
		}
	}
	return result
}

// FindRecallIDWithEffect returns the first recall of run bound to effect.
func FindRecallIDWithEffect(list []*Recall, id *RecallID, filename, effect string) *Recall {
	for _, r := range list {
		if r.RecallID() == id && r.Filename() == filename && r.Effect() == effect {
			return r
		}
	}
	return nil
}

// IsDone returns true if every run recall of context in list is done.
// Audio and channel level recalls are ignored.
func IsDone(list []*Recall, ctx *RecyclingContext) bool {
	if len(list) == 0 || ctx == nil {
		return false
	}
	for _, r := range list {
		if r.IsTemplate() || !r.Kind().IsRun() {
			continue
		}
		id := r.RecallID()
		if id == nil || id.RecyclingContext() != ctx {
			continue
		}
		if !r.IsDone() {
			return false
		}
	}
	return true
}

func matchProvider(r *Recall, provider interface{}) bool {
	switch p := provider.(type) {
	case *Channel:
		return p != nil && r.Channel() == p
	case *Audio:
		return p != nil && r.Channel() == nil && r.Audio() == p
	}
	return false
}
