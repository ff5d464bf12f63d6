// Package library is the read-only configuration service the symbol database
// queries: known function signatures, container and smart-pointer
// descriptors, platform integer widths, and fixed-width type aliases.
// Lookups for unknown names report absence; they never fail.
package library

import "strings"

// Yield classifies what a container accessor returns.
type Yield uint8

const (
	// YieldNone means the accessor result is not modeled.
	YieldNone Yield = iota
	// YieldItem yields a copy of the element type.
	YieldItem
	// YieldItemRef yields a reference to the element type.
	YieldItemRef
	// YieldIterator yields an iterator over the container.
	YieldIterator
	// YieldStartIterator yields a begin-style iterator.
	YieldStartIterator
	// YieldEndIterator yields an end-style iterator.
	YieldEndIterator
	// YieldSize yields an unsigned size.
	YieldSize
	// YieldBufferRaw yields a raw pointer to the element buffer.
	YieldBufferRaw
)

// Container describes one standard container class.
type Container struct {
	// Name is the fully qualified class name, e.g. "std::vector".
	Name string
	// ElementParam is the template parameter index of the element type.
	ElementParam int
	// StringLike marks string-style containers whose element defaults to char.
	StringLike bool
	// Accessors maps member function names to the kind of value they yield.
	Accessors map[string]Yield
}

// AccessorYield looks up what the named member function yields.
func (c *Container) AccessorYield(fn string) Yield {
	if c == nil {
		return YieldNone
	}
	return c.Accessors[fn]
}

// SmartPointer describes one smart-pointer class.
type SmartPointer struct {
	// Name is the fully qualified class name, e.g. "std::shared_ptr".
	Name string
	// Unique marks single-owner pointers.
	Unique bool
}

// Function describes an externally known free or member function.
type Function struct {
	Name     string
	Args     int
	Variadic bool
	Const    bool
	Pure     bool
	NoReturn bool
	NoThrow  bool
	// ReturnType is the declared return type as written, may be empty.
	ReturnType string
}

// PodType describes a fixed-width integer alias such as uint32_t.
type PodType struct {
	Name string
	// Size in bytes; 0 means platform pointer width (intptr-style types).
	Size int
	// Sign is 'u', 's', or 0 when unspecified.
	Sign byte
}

// Library is the aggregate descriptor set for one analysis run.
type Library struct {
	platform   Platform
	containers map[string]*Container
	smartPtrs  map[string]*SmartPointer
	functions  map[string]*Function
	podTypes   map[string]*PodType
}

// New returns an empty library using the native platform.
func New() *Library {
	return &Library{
		platform:   Native(),
		containers: make(map[string]*Container),
		smartPtrs:  make(map[string]*SmartPointer),
		functions:  make(map[string]*Function),
		podTypes:   make(map[string]*PodType),
	}
}

// Default returns a library pre-populated with the common std containers,
// smart pointers, and fixed-width integer aliases, so analysis is useful
// with no descriptor files on disk.
func Default() *Library {
	lib := New()

	seqAccessors := map[string]Yield{
		"at": YieldItemRef, "front": YieldItemRef, "back": YieldItemRef,
		"begin": YieldStartIterator, "end": YieldEndIterator,
		"cbegin": YieldStartIterator, "cend": YieldEndIterator,
		"data": YieldBufferRaw, "size": YieldSize, "length": YieldSize,
	}
	for _, name := range []string{"std::vector", "std::deque", "std::array", "std::list", "std::initializer_list"} {
		lib.AddContainer(&Container{Name: name, ElementParam: 0, Accessors: seqAccessors})
	}
	lib.AddContainer(&Container{Name: "std::string", StringLike: true, Accessors: seqAccessors})
	lib.AddContainer(&Container{Name: "std::wstring", StringLike: true, Accessors: seqAccessors})
	lib.AddContainer(&Container{Name: "std::string_view", StringLike: true, Accessors: seqAccessors})
	lib.AddContainer(&Container{Name: "std::set", ElementParam: 0, Accessors: map[string]Yield{
		"begin": YieldStartIterator, "end": YieldEndIterator, "size": YieldSize,
	}})
	lib.AddContainer(&Container{Name: "std::map", ElementParam: 1, Accessors: map[string]Yield{
		"at": YieldItemRef, "begin": YieldStartIterator, "end": YieldEndIterator, "size": YieldSize,
	}})
	lib.AddContainer(&Container{Name: "std::unordered_map", ElementParam: 1, Accessors: map[string]Yield{
		"at": YieldItemRef, "begin": YieldStartIterator, "end": YieldEndIterator, "size": YieldSize,
	}})

	lib.AddSmartPointer(&SmartPointer{Name: "std::unique_ptr", Unique: true})
	lib.AddSmartPointer(&SmartPointer{Name: "std::shared_ptr"})
	lib.AddSmartPointer(&SmartPointer{Name: "std::weak_ptr"})
	lib.AddSmartPointer(&SmartPointer{Name: "std::auto_ptr", Unique: true})

	for _, pt := range []PodType{
		{Name: "int8_t", Size: 1, Sign: 's'}, {Name: "uint8_t", Size: 1, Sign: 'u'},
		{Name: "int16_t", Size: 2, Sign: 's'}, {Name: "uint16_t", Size: 2, Sign: 'u'},
		{Name: "int32_t", Size: 4, Sign: 's'}, {Name: "uint32_t", Size: 4, Sign: 'u'},
		{Name: "int64_t", Size: 8, Sign: 's'}, {Name: "uint64_t", Size: 8, Sign: 'u'},
		{Name: "intptr_t", Size: 0, Sign: 's'}, {Name: "uintptr_t", Size: 0, Sign: 'u'},
		{Name: "size_t", Size: 0, Sign: 'u'}, {Name: "ssize_t", Size: 0, Sign: 's'},
		{Name: "ptrdiff_t", Size: 0, Sign: 's'},
	} {
		p := pt
		lib.AddPodType(&p)
	}

	lib.AddFunction(&Function{Name: "strlen", Args: 1, Pure: true, NoThrow: true, ReturnType: "size_t"})
	lib.AddFunction(&Function{Name: "malloc", Args: 1, NoThrow: true, ReturnType: "void *"})
	lib.AddFunction(&Function{Name: "free", Args: 1, NoThrow: true})
	lib.AddFunction(&Function{Name: "memcpy", Args: 3, NoThrow: true, ReturnType: "void *"})
	lib.AddFunction(&Function{Name: "printf", Args: 1, Variadic: true})
	lib.AddFunction(&Function{Name: "abort", Args: 0, NoReturn: true})
	lib.AddFunction(&Function{Name: "exit", Args: 1, NoReturn: true})

	return lib
}

// SetPlatform selects the platform width table.
func (l *Library) SetPlatform(p Platform) { l.platform = p }

// Platform returns the active platform width table.
func (l *Library) Platform() Platform { return l.platform }

// AddContainer registers a container descriptor.
func (l *Library) AddContainer(c *Container) { l.containers[c.Name] = c }

// AddSmartPointer registers a smart-pointer descriptor.
func (l *Library) AddSmartPointer(s *SmartPointer) { l.smartPtrs[s.Name] = s }

// AddFunction registers a known function signature.
func (l *Library) AddFunction(f *Function) { l.functions[f.Name] = f }

// AddPodType registers a fixed-width type alias.
func (l *Library) AddPodType(p *PodType) { l.podTypes[p.Name] = p }

// Container looks up a container descriptor by qualified or plain name.
func (l *Library) Container(name string) (*Container, bool) {
	c, ok := l.containers[name]
	if !ok {
		c, ok = l.containers["std::"+strings.TrimPrefix(name, "::")]
	}
	return c, ok
}

// SmartPointer looks up a smart-pointer descriptor by qualified or plain name.
func (l *Library) SmartPointer(name string) (*SmartPointer, bool) {
	s, ok := l.smartPtrs[name]
	if !ok {
		s, ok = l.smartPtrs["std::"+strings.TrimPrefix(name, "::")]
	}
	return s, ok
}

// Function looks up a known function signature by name.
func (l *Library) Function(name string) (*Function, bool) {
	f, ok := l.functions[name]
	return f, ok
}

// PodType looks up a fixed-width alias by name.
func (l *Library) PodType(name string) (*PodType, bool) {
	p, ok := l.podTypes[name]
	return p, ok
}

// ContainerNames lists registered container names, for diagnostics.
func (l *Library) ContainerNames() []string {
	names := make([]string, 0, len(l.containers))
	for name := range l.containers {
		names = append(names, name)
	}
	return names
}
