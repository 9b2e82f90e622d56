package metadata

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/conduit-lang/contractabi/pkg/abi"
	"github.com/conduit-lang/contractabi/pkg/registry"
)

var (
	// ErrNotLoaded is returned by queries against an empty registry.
	ErrNotLoaded = errors.New("registry not initialized")
	// ErrNotFound is returned when a named entry does not exist.
	ErrNotFound = errors.New("not found")
	// ErrIncompleteContract is returned for a manifest whose contract lacks
	// constructors or messages.
	ErrIncompleteContract = errors.New("incomplete contract")
)

// Registry holds a loaded manifest for queries. It is safe for concurrent
// use; Load may be called again to replace the manifest.
type Registry struct {
	mu          sync.RWMutex
	project     *abi.Project
	contract    *ContractInfo
	fingerprint string

	// Pre-computed indexes, rebuilt on every Load
	indexes

	// Query result cache, cleared on Load
	cache      map[string]interface{}
	cacheMutex sync.RWMutex

	initialized atomic.Bool
}

// New returns an empty registry.
func New() *Registry {
	r := &Registry{indexes: newIndexes()}
	r.resetCache()
	return r
}

var globalRegistry = New()

type indexes struct {
	constructorsByName map[string]*ConstructorInfo
	messagesByName     map[string]*MessageInfo
	eventsByName       map[string]*EventInfo
	bySelector         map[abi.Selector]*SelectorEntry
	typesByName        map[string]registry.Symbol
}

func newIndexes() indexes {
	return indexes{
		constructorsByName: make(map[string]*ConstructorInfo),
		messagesByName:     make(map[string]*MessageInfo),
		eventsByName:       make(map[string]*EventInfo),
		bySelector:         make(map[abi.Selector]*SelectorEntry),
		typesByName:        make(map[string]registry.Symbol),
	}
}

func (r *Registry) resetCache() {
	r.cacheMutex.Lock()
	r.cache = make(map[string]interface{})
	r.cacheMutex.Unlock()
}

// Load decodes a serialized manifest, plain or gzip-compressed, resolves
// every symbol and builds the query indexes. On error the registry keeps
// its previous state.
func (r *Registry) Load(data []byte) error {
	if isGzip(data) {
		plain, err := gunzip(data)
		if err != nil {
			return err
		}
		data = plain
	}

	var project abi.Project
	if err := json.Unmarshal(data, &project); err != nil {
		return fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	return r.LoadProject(&project)
}

// LoadProject indexes an already decoded manifest.
func (r *Registry) LoadProject(project *abi.Project) error {
	if project == nil || project.Registry == nil {
		return fmt.Errorf("manifest has no registry")
	}
	contract, err := resolveContract(project)
	if err != nil {
		return fmt.Errorf("failed to resolve manifest: %w", err)
	}
	canonical, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	sum := sha256.Sum256(canonical)
	idx, err := buildIndexes(project, contract)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.project = project
	r.contract = contract
	r.fingerprint = hex.EncodeToString(sum[:16])
	r.indexes = idx
	r.resetCache()
	r.initialized.Store(true)
	return nil
}

func buildIndexes(project *abi.Project, c *ContractInfo) (indexes, error) {
	idx := newIndexes()
	for i := range c.Constructors {
		ctor := &c.Constructors[i]
		idx.constructorsByName[ctor.Name] = ctor
		if prev, dup := idx.bySelector[ctor.Selector]; dup {
			return idx, fmt.Errorf("selector %s used by %s and %s", ctor.Selector.Hex(), prev.Name, ctor.Name)
		}
		idx.bySelector[ctor.Selector] = &SelectorEntry{Kind: KindConstructor, Name: ctor.Name, Constructor: ctor}
	}
	for i := range c.Messages {
		msg := &c.Messages[i]
		idx.messagesByName[msg.Name] = msg
		if prev, dup := idx.bySelector[msg.Selector]; dup {
			return idx, fmt.Errorf("selector %s used by %s and %s", msg.Selector.Hex(), prev.Name, msg.Name)
		}
		idx.bySelector[msg.Selector] = &SelectorEntry{Kind: KindMessage, Name: msg.Name, Message: msg}
	}
	for i := range c.Events {
		ev := &c.Events[i]
		idx.eventsByName[ev.Name] = ev
	}
	for i := 0; i < project.Registry.TypeCount(); i++ {
		sym := registry.Symbol(i + 1)
		name, err := project.Registry.TypeName(sym)
		if err != nil {
			return idx, err
		}
		idx.typesByName[name] = sym
	}
	return idx, nil
}

// Reset empties the registry.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.project = nil
	r.contract = nil
	r.fingerprint = ""
	r.indexes = newIndexes()
	r.resetCache()
	r.initialized.Store(false)
}

// Fingerprint identifies the loaded manifest content. It is empty when
// nothing is loaded.
func (r *Registry) Fingerprint() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fingerprint
}

// Loaded reports whether a manifest has been loaded.
func (r *Registry) Loaded() bool {
	return r.initialized.Load()
}

// Project returns the raw manifest.
func (r *Registry) Project() (*abi.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.project == nil {
		return nil, ErrNotLoaded
	}
	return r.project, nil
}

// Contract returns the resolved contract.
func (r *Registry) Contract() (*ContractInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.contract == nil {
		return nil, ErrNotLoaded
	}
	return r.contract, nil
}

// Constructors returns a copy of the constructor list in declaration order.
func (r *Registry) Constructors() []ConstructorInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.contract == nil {
		return nil
	}
	out := make([]ConstructorInfo, len(r.contract.Constructors))
	copy(out, r.contract.Constructors)
	return out
}

// Constructor finds a constructor by name.
func (r *Registry) Constructor(name string) (*ConstructorInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.contract == nil {
		return nil, ErrNotLoaded
	}
	ctor, ok := r.constructorsByName[name]
	if !ok {
		return nil, fmt.Errorf("constructor %s: %w", name, ErrNotFound)
	}
	return ctor, nil
}

// Messages returns a copy of the message list in declaration order.
func (r *Registry) Messages() []MessageInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.contract == nil {
		return nil
	}
	out := make([]MessageInfo, len(r.contract.Messages))
	copy(out, r.contract.Messages)
	return out
}

// Message finds a message by name.
func (r *Registry) Message(name string) (*MessageInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.contract == nil {
		return nil, ErrNotLoaded
	}
	msg, ok := r.messagesByName[name]
	if !ok {
		return nil, fmt.Errorf("message %s: %w", name, ErrNotFound)
	}
	return msg, nil
}

// BySelector finds the constructor or message dispatched by sel.
func (r *Registry) BySelector(sel abi.Selector) (*SelectorEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.contract == nil {
		return nil, ErrNotLoaded
	}
	entry, ok := r.bySelector[sel]
	if !ok {
		return nil, fmt.Errorf("selector %s: %w", sel.Hex(), ErrNotFound)
	}
	return entry, nil
}

// Events returns a copy of the event list in declaration order.
func (r *Registry) Events() []EventInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.contract == nil {
		return nil
	}
	out := make([]EventInfo, len(r.contract.Events))
	copy(out, r.contract.Events)
	return out
}

// Event finds an event by name.
func (r *Registry) Event(name string) (*EventInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.contract == nil {
		return nil, ErrNotLoaded
	}
	ev, ok := r.eventsByName[name]
	if !ok {
		return nil, fmt.Errorf("event %s: %w", name, ErrNotFound)
	}
	return ev, nil
}

// MutatingMessages returns the messages that change contract state.
func (r *Registry) MutatingMessages() []MessageInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.contract == nil {
		return nil
	}

	if cached := r.getCached("mutating"); cached != nil {
		return cached.([]MessageInfo)
	}
	var result []MessageInfo
	for _, msg := range r.contract.Messages {
		if msg.Mutates {
			result = append(result, msg)
		}
	}
	r.setCached("mutating", result)
	return result
}

// MessagesByType returns the messages whose arguments or return value
// mention typeName, directly or nested inside another type. typeName
// matches either a canonical type name or a display name.
func (r *Registry) MessagesByType(typeName string) []MessageInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.contract == nil {
		return nil
	}

	cacheKey := "messages_by_type:" + typeName
	if cached := r.getCached(cacheKey); cached != nil {
		return cached.([]MessageInfo)
	}

	var result []MessageInfo
	for _, msg := range r.contract.Messages {
		if r.messageUses(msg, typeName) {
			result = append(result, msg)
		}
	}
	r.setCached(cacheKey, result)
	return result
}

func (r *Registry) messageUses(msg MessageInfo, typeName string) bool {
	refs := make([]TypeRef, 0, len(msg.Args)+1)
	for _, arg := range msg.Args {
		refs = append(refs, arg.Type)
	}
	if msg.Returns != nil {
		refs = append(refs, *msg.Returns)
	}
	target, known := r.typesByName[typeName]
	for _, ref := range refs {
		if ref.Display == typeName || ref.Type == typeName {
			return true
		}
		if known && r.reaches(ref.ID, target) {
			return true
		}
	}
	return false
}

// Strings returns the manifest string table.
func (r *Registry) Strings() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.project == nil {
		return nil
	}
	return r.project.Registry.Strings()
}

// Types returns the manifest type table with rendered names.
func (r *Registry) Types() []TypeEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.project == nil {
		return nil
	}

	if cached := r.getCached("types"); cached != nil {
		return cached.([]TypeEntry)
	}
	result := make([]TypeEntry, 0, len(r.typesByName))
	for name, sym := range r.typesByName {
		ct, _ := r.project.Registry.ResolveType(sym)
		result = append(result, TypeEntry{ID: sym, Name: name, Kind: defKind(ct.Def)})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	r.setCached("types", result)
	return result
}

// getCached retrieves a value from the cache
func (r *Registry) getCached(key string) interface{} {
	r.cacheMutex.RLock()
	defer r.cacheMutex.RUnlock()
	return r.cache[key]
}

// setCached stores a value in the cache
func (r *Registry) setCached(key string, value interface{}) {
	r.cacheMutex.Lock()
	defer r.cacheMutex.Unlock()
	r.cache[key] = value
}

func defKind(d registry.CompactDef) string {
	switch {
	case d.Primitive != "":
		return "primitive"
	case d.Composite != nil:
		return "composite"
	case d.Variant != nil:
		return "variant"
	case d.Sequence != nil:
		return "sequence"
	case d.Array != nil:
		return "array"
	case d.Tuple != nil:
		return "tuple"
	default:
		return "unknown"
	}
}

func isGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

func gunzip(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	plain, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress manifest: %w", err)
	}
	return plain, nil
}

// RegisterManifest loads a manifest into the global registry.
func RegisterManifest(data []byte) error {
	return globalRegistry.Load(data)
}

// Reset clears the global registry. Used by tests.
func Reset() {
	globalRegistry.Reset()
}

// QueryContract returns the resolved contract of the global registry.
func QueryContract() (*ContractInfo, error) {
	return globalRegistry.Contract()
}

// QueryConstructors returns all constructors of the global registry.
func QueryConstructors() []ConstructorInfo {
	return globalRegistry.Constructors()
}

// QueryMessages returns all messages of the global registry.
func QueryMessages() []MessageInfo {
	return globalRegistry.Messages()
}

// QueryMessage finds a message in the global registry.
func QueryMessage(name string) (*MessageInfo, error) {
	return globalRegistry.Message(name)
}

// QuerySelector finds the entry dispatched by sel in the global registry.
func QuerySelector(sel abi.Selector) (*SelectorEntry, error) {
	return globalRegistry.BySelector(sel)
}

// QueryEvents returns all events of the global registry.
func QueryEvents() []EventInfo {
	return globalRegistry.Events()
}

// QueryEvent finds an event in the global registry.
func QueryEvent(name string) (*EventInfo, error) {
	return globalRegistry.Event(name)
}

// QueryMessagesByType returns the global registry's messages that use typeName.
func QueryMessagesByType(typeName string) []MessageInfo {
	return globalRegistry.MessagesByType(typeName)
}

// QueryMutatingMessages returns the global registry's state changing messages.
func QueryMutatingMessages() []MessageInfo {
	return globalRegistry.MutatingMessages()
}
