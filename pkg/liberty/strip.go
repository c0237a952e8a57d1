package liberty

import "strings"

// StripNoise removes composite current source noise data from a fragment
// in place, leaving the basic characterization. It deletes every top-level
// key mentioning ccsn_, and inside each pin group the input_voltage entry
// and every ccsn_-prefixed key of the pin's timing arcs.
//
// Stripping an already stripped fragment is a no-op.
func StripNoise(g *Group) {
	for _, k := range g.Keys() {
		if strings.Contains(k, "ccsn_") {
			g.Delete(k)
			continue
		}

		if !strings.HasPrefix(k, "pin ") {
			continue
		}
		v, _ := g.Get(k)
		pin, ok := v.(*Group)
		if !ok {
			continue
		}

		pin.Delete("input_voltage")

		tv, ok := pin.Get("timing")
		if !ok {
			continue
		}
		arcs, ok := tv.(List)
		if !ok {
			continue
		}
		for _, el := range arcs {
			arc, ok := el.(*Group)
			if !ok {
				continue
			}
			for _, ak := range arc.Keys() {
				if strings.HasPrefix(ak, "ccsn_") {
					arc.Delete(ak)
				}
			}
		}
	}
}
