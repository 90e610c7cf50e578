package inspect

import (
	"fmt"
	"strconv"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/protobuf/types/descriptorpb"
)

// toMessage fills msg from fields. Unknown names are ignored. String values
// are parsed into numeric and boolean fields, so command line arguments can
// be passed through unchanged.
func toMessage(fields map[string]any, msg *dynamic.Message) error {
	md := msg.GetMessageDescriptor()
	for name, val := range fields {
		fd := md.FindFieldByName(name)
		if fd == nil {
			continue
		}
		v, err := toProtoValue(val, fd)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		if v != nil {
			if err := msg.TrySetField(fd, v); err != nil {
				return fmt.Errorf("field %s: %w", name, err)
			}
		}
	}
	return nil
}

func toProtoValue(val any, fd *desc.FieldDescriptor) (any, error) {
	if val == nil {
		return nil, nil
	}
	if !fd.IsRepeated() {
		return toProtoSingleValue(val, fd)
	}

	var items []any
	switch list := val.(type) {
	case []any:
		items = list
	case []map[string]any:
		for _, item := range list {
			items = append(items, item)
		}
	default:
		return nil, fmt.Errorf("expected a list, got %T", val)
	}
	out := make([]any, 0, len(items))
	for _, item := range items {
		v, err := toProtoSingleValue(item, fd)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func toProtoSingleValue(val any, fd *desc.FieldDescriptor) (any, error) {
	switch fd.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_INT32, descriptorpb.FieldDescriptorProto_TYPE_SINT32, descriptorpb.FieldDescriptorProto_TYPE_SFIXED32:
		i, err := toInt(val)
		return int32(i), err
	case descriptorpb.FieldDescriptorProto_TYPE_INT64, descriptorpb.FieldDescriptorProto_TYPE_SINT64, descriptorpb.FieldDescriptorProto_TYPE_SFIXED64:
		return toInt(val)
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		switch b := val.(type) {
		case bool:
			return b, nil
		case string:
			return strconv.ParseBool(b)
		}
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		if s, ok := val.(string); ok {
			return s, nil
		}
		return fmt.Sprint(val), nil
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE:
		fields, ok := val.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected a map for %s, got %T", fd.GetMessageType().GetName(), val)
		}
		msg := dynamic.NewMessage(fd.GetMessageType())
		if err := toMessage(fields, msg); err != nil {
			return nil, err
		}
		return msg, nil
	}
	return nil, fmt.Errorf("unsupported conversion of %T to %v", val, fd.GetType())
}

func toInt(val any) (int64, error) {
	switch v := val.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	}
	return 0, fmt.Errorf("expected an integer, got %T", val)
}

// fromMessage converts msg to a map keyed by field name. Every field of the
// message is present; unset ones hold their zero value.
func fromMessage(msg *dynamic.Message) map[string]any {
	fields := make(map[string]any)
	for _, fd := range msg.GetMessageDescriptor().GetFields() {
		fields[fd.GetName()] = fromProtoValue(msg.GetField(fd), fd)
	}
	return fields
}

func fromProtoValue(val any, fd *desc.FieldDescriptor) any {
	if !fd.IsRepeated() {
		return fromProtoSingleValue(val)
	}
	slice, _ := val.([]any)
	list := make([]any, 0, len(slice))
	for _, v := range slice {
		list = append(list, fromProtoSingleValue(v))
	}
	return list
}

func fromProtoSingleValue(val any) any {
	switch v := val.(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case *dynamic.Message:
		return fromMessage(v)
	}
	return val
}
