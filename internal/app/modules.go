package app

import (
	"github.com/SquizAI/DW-final-sub000/internal/registry"
	"github.com/SquizAI/DW-final-sub000/modules/analyze"
	"github.com/SquizAI/DW-final-sub000/modules/export"
	"github.com/SquizAI/DW-final-sub000/modules/source"
	"github.com/SquizAI/DW-final-sub000/modules/transform"
	"github.com/SquizAI/DW-final-sub000/modules/visualize"
)

// coreModules is the definitive list of processor modules compiled into
// the dwflow binary.
var coreModules = []registry.Module{
	&source.Module{},
	&transform.Module{},
	&analyze.Module{},
	&visualize.Module{},
	&export.Module{},
}
