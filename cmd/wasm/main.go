//go:build js && wasm

package main

import (
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/MeKo-Tech/pointmap/internal/dataset"
	"github.com/MeKo-Tech/pointmap/internal/mapview"
)

var session *mapview.Session

// hover runs the pointer-move handler for container pixel (x, y) and returns the
// tooltip state as JSON. Exposed to JavaScript as pointmapHover.
func hover(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return map[string]interface{}{"error": "missing arguments"}
	}
	state := session.HandlePointerMove(mapview.PointerEvent{
		Type:  "pointermove",
		Pixel: mapview.Pixel{args[0].Float(), args[1].Float()},
	})
	data, err := json.Marshal(state)
	if err != nil {
		return map[string]interface{}{"error": err.Error()}
	}
	return string(data)
}

func main() {
	host := newDOMHost(js.Global().Get("document"))

	features, err := dataset.Reference()
	if err != nil {
		fmt.Println("pointmap:", err)
		return
	}

	mapEl := host.doc.Call("getElementById", mapview.MapElementID)
	if mapEl.IsNull() {
		fmt.Println("pointmap: missing #" + mapview.MapElementID)
		return
	}

	// The server renders the same view settings onto the container.
	cfg, err := mapview.ParseViewConfig(func(name string) string {
		v := mapEl.Call("getAttribute", name)
		if v.IsNull() || v.IsUndefined() {
			return ""
		}
		return v.String()
	})
	if err != nil {
		fmt.Println("pointmap:", err)
		return
	}

	session, err = mapview.NewSession(host, features, cfg.Options())
	if err != nil {
		fmt.Println("pointmap:", err)
		return
	}

	mapEl.Call("addEventListener", "pointermove", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		evt := args[0]
		rect := mapEl.Call("getBoundingClientRect")
		x := evt.Get("clientX").Float() - rect.Get("left").Float()
		y := evt.Get("clientY").Float() - rect.Get("top").Float()
		session.HandlePointerMove(mapview.PointerEvent{Type: "pointermove", Pixel: mapview.Pixel{x, y}})
		return nil
	}))

	js.Global().Set("pointmapHover", js.FuncOf(hover))

	fmt.Println("pointmap WASM module loaded")
	select {}
}
