package scoring

import "errors"

// ErrSlotRemap is returned when the item id remap table cannot be loaded.
var ErrSlotRemap = errors.New("load slot remap")
