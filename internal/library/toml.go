package library

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// tomlFile mirrors the on-disk descriptor format. All sections are optional;
// loading merges into the receiver, later files winning on name clashes.
type tomlFile struct {
	Platform   string          `toml:"platform"`
	Containers []tomlContainer `toml:"containers"`
	SmartPtrs  []tomlSmartPtr  `toml:"smartPointers"`
	Functions  []tomlFunction  `toml:"functions"`
	PodTypes   []tomlPodType   `toml:"podTypes"`
}

type tomlContainer struct {
	Name         string            `toml:"name"`
	ElementParam int               `toml:"elementParam"`
	StringLike   bool              `toml:"stringLike"`
	Accessors    map[string]string `toml:"accessors"`
}

type tomlSmartPtr struct {
	Name   string `toml:"name"`
	Unique bool   `toml:"unique"`
}

type tomlFunction struct {
	Name       string `toml:"name"`
	Args       int    `toml:"args"`
	Variadic   bool   `toml:"variadic"`
	Const      bool   `toml:"const"`
	Pure       bool   `toml:"pure"`
	NoReturn   bool   `toml:"noreturn"`
	NoThrow    bool   `toml:"nothrow"`
	ReturnType string `toml:"returnType"`
}

type tomlPodType struct {
	Name string `toml:"name"`
	Size int    `toml:"size"`
	Sign string `toml:"sign"`
}

var yieldNames = map[string]Yield{
	"item":           YieldItem,
	"item-ref":       YieldItemRef,
	"iterator":       YieldIterator,
	"start-iterator": YieldStartIterator,
	"end-iterator":   YieldEndIterator,
	"size":           YieldSize,
	"buffer-raw":     YieldBufferRaw,
}

// LoadFile merges one TOML descriptor file into the library.
func (l *Library) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("library file %s: %w", path, err)
	}
	var f tomlFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("library file %s: %w", path, err)
	}

	if f.Platform != "" {
		p, err := PlatformByName(f.Platform)
		if err != nil {
			return fmt.Errorf("library file %s: %w", path, err)
		}
		l.platform = p
	}
	for _, c := range f.Containers {
		accessors := make(map[string]Yield, len(c.Accessors))
		for fn, yield := range c.Accessors {
			y, ok := yieldNames[yield]
			if !ok {
				return fmt.Errorf("library file %s: container %s: unknown yield %q", path, c.Name, yield)
			}
			accessors[fn] = y
		}
		l.AddContainer(&Container{
			Name: c.Name, ElementParam: c.ElementParam,
			StringLike: c.StringLike, Accessors: accessors,
		})
	}
	for _, s := range f.SmartPtrs {
		l.AddSmartPointer(&SmartPointer{Name: s.Name, Unique: s.Unique})
	}
	for _, fn := range f.Functions {
		l.AddFunction(&Function{
			Name: fn.Name, Args: fn.Args, Variadic: fn.Variadic,
			Const: fn.Const, Pure: fn.Pure, NoReturn: fn.NoReturn,
			NoThrow: fn.NoThrow, ReturnType: fn.ReturnType,
		})
	}
	for _, pt := range f.PodTypes {
		var sign byte
		if pt.Sign != "" {
			sign = pt.Sign[0]
		}
		l.AddPodType(&PodType{Name: pt.Name, Size: pt.Size, Sign: sign})
	}
	return nil
}
