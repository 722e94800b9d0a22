package pubsub

import (
	"fmt"
	"sort"
	"time"

	"github.com/onsip/ox-go/pkg/stanza"
)

// Subscription option form constants.
const (
	SubscribeOptionsFormType = "http://jabber.org/protocol/pubsub#subscribe_options"
	OptionFieldPrefix        = "pubsub#"

	// OptionExpire is the subscription expiry option. Its value must be a time.Time.
	OptionExpire = "expire"
)

// ExpireLayout is the UTC wire layout for the expire option: four
// fractional digits, literal Z. The value is truncated to milliseconds
// first, so the fourth digit is always zero.
const ExpireLayout = "2006-01-02T15:04:05.0000Z"

// Options maps subscription option names (without the pubsub# prefix) to values.
type Options map[string]any

// optionTransform converts an application value to its wire form and back.
type optionTransform interface {
	toWire(value any) (string, error)
	fromWire(value string) (any, error)
}

var optionTransforms = map[string]optionTransform{
	OptionExpire: expireTransform{},
}

type expireTransform struct{}

func (expireTransform) toWire(value any) (string, error) {
	var t time.Time
	switch v := value.(type) {
	case time.Time:
		t = v
	case *time.Time:
		if v == nil {
			return "", fmt.Errorf("%w: %s is nil", ErrInvalidOptionValue, OptionExpire)
		}
		t = *v
	default:
		return "", fmt.Errorf("%w: %s requires time.Time, got %T", ErrInvalidOptionValue, OptionExpire, value)
	}
	return t.UTC().Truncate(time.Millisecond).Format(ExpireLayout), nil
}

// Wire-to-application decoding is not defined for expire.
func (expireTransform) fromWire(string) (any, error) {
	return nil, ErrOptionDecodeUnsupported
}

// EncodeOptionValue returns the wire value for a single option.
func EncodeOptionValue(name string, value any) ([]string, error) {
	if tr, ok := optionTransforms[name]; ok {
		s, err := tr.toWire(value)
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	}

	switch v := value.(type) {
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case fmt.Stringer:
		return []string{v.String()}, nil
	default:
		return []string{fmt.Sprint(v)}, nil
	}
}

// DecodeOption is the reverse of EncodeOptionValue. No option has a
// defined wire-to-application decoding, so it always returns
// ErrOptionDecodeUnsupported.
func DecodeOption(name, value string) (any, error) {
	if tr, ok := optionTransforms[name]; ok {
		return tr.fromWire(value)
	}
	return nil, ErrOptionDecodeUnsupported
}

// EncodeOptions builds the <options/> element carrying a submitted
// subscribe_options data form. Fields are written in name order after
// FORM_TYPE.
func EncodeOptions(opts Options) (*stanza.Element, error) {
	form := stanza.NewElement(stanza.NSDataForms, "x").SetAttr("type", "submit")
	addField(form, "FORM_TYPE", "hidden", SubscribeOptionsFormType)

	names := make([]string, 0, len(opts))
	for name := range opts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		values, err := EncodeOptionValue(name, opts[name])
		if err != nil {
			return nil, err
		}
		addField(form, OptionFieldPrefix+name, "", values...)
	}

	options := stanza.NewElement("", "options")
	options.AddChild(form)
	return options, nil
}

func addField(form *stanza.Element, name, typ string, values ...string) {
	field := form.AddChild(stanza.NewElement("", "field")).SetAttr("var", name)
	if typ != "" {
		field.SetAttr("type", typ)
	}
	for _, v := range values {
		field.AddChild(&stanza.Element{Local: "value", Text: v})
	}
}
