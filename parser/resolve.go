package parser

// isPseudoTarget verifica se l'id è una destinazione speciale del formato
func (b *builder) isPseudoTarget(id string) bool {
	_, ok := b.pseudo[id]
	return ok
}

// resolveJumps controlla ogni salto di ogni storia. Una destinazione
// sconosciuta è solo un warning: può essere risolta altrove.
func (b *builder) resolveJumps() {
	for _, story := range b.doc.Stories {
		story.Walk(func(c *Choice) {
			for _, j := range c.Jumps {
				for _, t := range SplitJumpTarget(j.Target) {
					if b.isPseudoTarget(t.ID) {
						continue
					}
					if _, ok := story.Ref(t.ID); ok {
						continue
					}
					if !IsIdentifier(t.ID) {
						b.addf(SeverityWarning, j.Range, CodeUnknownJumpTarget,
							"Unknown jump target '%s': expected an id or 'if <cond> ? <a> : <b>'", t.ID)
						continue
					}
					b.addf(SeverityWarning, j.Range, CodeUnknownJumpTarget,
						"Unknown jump target '%s'", t.ID)
				}
			}
		})
	}
}
