package types

// EffectSet is four independent boolean effects (§3/§5). Union is
// pointwise OR. An EffectSet is attached to function inference types; the
// resolver sets it only on the built-in store methods, the built-in actor
// send method and actor message-handler signatures, and does not
// propagate effects through calls.
type EffectSet struct {
	IO        bool
	Store     bool
	ActorSend bool
	Mutation  bool
}

// Union returns the pointwise OR of e and other.
func (e EffectSet) Union(other EffectSet) EffectSet {
	return EffectSet{
		IO:        e.IO || other.IO,
		Store:     e.Store || other.Store,
		ActorSend: e.ActorSend || other.ActorSend,
		Mutation:  e.Mutation || other.Mutation,
	}
}

// Equal reports exact effect equality, the current design's requirement
// when unifying two function types (§4.3/§9 — subtyping is a noted future
// improvement, not implemented here).
func (e EffectSet) Equal(other EffectSet) bool {
	return e.IO == other.IO && e.Store == other.Store &&
		e.ActorSend == other.ActorSend && e.Mutation == other.Mutation
}
