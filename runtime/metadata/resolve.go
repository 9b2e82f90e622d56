package metadata

import (
	"fmt"

	"github.com/conduit-lang/contractabi/pkg/abi"
	"github.com/conduit-lang/contractabi/pkg/registry"
)

// resolveContract turns the compact contract of a manifest back into named
// entries. Any dangling symbol fails the whole manifest.
func resolveContract(p *abi.Project) (*ContractInfo, error) {
	c := p.Contract
	name, err := resolveString(p, c.Name)
	if err != nil {
		return nil, fmt.Errorf("contract name: %w", err)
	}
	if len(c.Constructors) == 0 {
		return nil, fmt.Errorf("%w: %s has no constructors", ErrIncompleteContract, name)
	}
	if len(c.Messages) == 0 {
		return nil, fmt.Errorf("%w: %s has no messages", ErrIncompleteContract, name)
	}

	info := &ContractInfo{
		Name:         name,
		Source:       p.Source,
		Constructors: make([]ConstructorInfo, 0, len(c.Constructors)),
		Messages:     make([]MessageInfo, 0, len(c.Messages)),
		Events:       make([]EventInfo, 0, len(c.Events)),
		Docs:         c.Docs,
	}

	for _, ctor := range c.Constructors {
		ctorName, err := resolveString(p, ctor.Name)
		if err != nil {
			return nil, fmt.Errorf("constructor name: %w", err)
		}
		args, err := resolveArgs(p, ctor.Args)
		if err != nil {
			return nil, fmt.Errorf("constructor %s: %w", ctorName, err)
		}
		info.Constructors = append(info.Constructors, ConstructorInfo{
			Name:     ctorName,
			Selector: ctor.Selector,
			Args:     args,
			Docs:     ctor.Docs,
		})
	}

	for _, msg := range c.Messages {
		msgName, err := resolveString(p, msg.Name)
		if err != nil {
			return nil, fmt.Errorf("message name: %w", err)
		}
		args, err := resolveArgs(p, msg.Args)
		if err != nil {
			return nil, fmt.Errorf("message %s: %w", msgName, err)
		}
		var returns *TypeRef
		if msg.ReturnType.Type != nil {
			ref, err := resolveTypeRef(p, *msg.ReturnType.Type)
			if err != nil {
				return nil, fmt.Errorf("message %s return: %w", msgName, err)
			}
			returns = &ref
		}
		info.Messages = append(info.Messages, MessageInfo{
			Name:     msgName,
			Selector: msg.Selector,
			Mutates:  msg.Mutates,
			Args:     args,
			Returns:  returns,
			Docs:     msg.Docs,
		})
	}

	for _, ev := range c.Events {
		evName, err := resolveString(p, ev.Name)
		if err != nil {
			return nil, fmt.Errorf("event name: %w", err)
		}
		args := make([]EventArgInfo, 0, len(ev.Args))
		for _, a := range ev.Args {
			argName, err := resolveString(p, a.Name)
			if err != nil {
				return nil, fmt.Errorf("event %s: %w", evName, err)
			}
			ref, err := resolveTypeRef(p, a.Type)
			if err != nil {
				return nil, fmt.Errorf("event %s arg %s: %w", evName, argName, err)
			}
			args = append(args, EventArgInfo{Name: argName, Type: ref, Indexed: a.Indexed, Docs: a.Docs})
		}
		info.Events = append(info.Events, EventInfo{Name: evName, Args: args, Docs: ev.Docs})
	}

	return info, nil
}

func resolveArgs(p *abi.Project, compact []abi.CompactMessageParamSpec) ([]ArgInfo, error) {
	args := make([]ArgInfo, 0, len(compact))
	for _, a := range compact {
		name, err := resolveString(p, a.Name)
		if err != nil {
			return nil, err
		}
		ref, err := resolveTypeRef(p, a.Type)
		if err != nil {
			return nil, fmt.Errorf("arg %s: %w", name, err)
		}
		args = append(args, ArgInfo{Name: name, Type: ref})
	}
	return args, nil
}

func resolveTypeRef(p *abi.Project, ts abi.CompactTypeSpec) (TypeRef, error) {
	typeName, err := p.Registry.TypeName(ts.Type)
	if err != nil {
		return TypeRef{}, err
	}
	display, err := p.DisplayType(ts)
	if err != nil {
		return TypeRef{}, err
	}
	return TypeRef{ID: ts.Type, Type: typeName, Display: display}, nil
}

func resolveString(p *abi.Project, sym registry.Symbol) (string, error) {
	s, ok := p.Registry.ResolveString(sym)
	if !ok {
		return "", fmt.Errorf("%w: string %d", registry.ErrUnknownSymbol, sym)
	}
	return s, nil
}
