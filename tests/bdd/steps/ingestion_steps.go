//go:build bdd

package steps

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"github.com/axonops/protodesc-core/internal/descriptor"
)

// RegisterIngestionSteps registers every Given/When/Then used by
// features/ingestion.feature.
func RegisterIngestionSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	ctx.Step(`^a FileDescriptorSet with package "([^"]*)" and no messages or enums$`, func(pkg string) error {
		tc.pkg, tc.hasPkg = pkg, true
		return nil
	})
	ctx.Step(`^a FileDescriptorSet with package "([^"]*)"$`, func(pkg string) error {
		tc.pkg, tc.hasPkg = pkg, true
		return nil
	})
	ctx.Step(`^a FileDescriptorSet with no package$`, func() error {
		tc.hasPkg = false
		return nil
	})

	ctx.Step(`^message "([^"]*)" with field "([^"]*)" number (\d+) type (\w+) label (\w+)$`,
		func(msg, field string, number int64, typ, label string) error {
			t, err := scalarType(typ)
			if err != nil {
				return err
			}
			l, err := fieldLabel(label)
			if err != nil {
				return err
			}
			tc.messages = append(tc.messages, messageFixture{
				name: msg,
				fields: []fieldFixture{
					{name: field, number: int32(number), typ: t, label: l},
				},
			})
			return nil
		})

	ctx.Step(`^message "([^"]*)" with field "([^"]*)" number (\d+) type (\w+) default "([^"]*)"$`,
		func(msg, field string, number int64, typ, def string) error {
			t, err := scalarType(typ)
			if err != nil {
				return err
			}
			tc.messages = append(tc.messages, messageFixture{
				name: msg,
				fields: []fieldFixture{
					{name: field, number: int32(number), typ: t, hasDefault: true, defaultValue: def},
				},
			})
			return nil
		})

	ctx.Step(`^message "([^"]*)" containing nested message "([^"]*)" containing nested message "([^"]*)"$`,
		func(a, b, c string) error {
			tc.messages = append(tc.messages, messageFixture{
				name: a,
				nested: []messageFixture{
					{name: b, nested: []messageFixture{{name: c}}},
				},
			})
			return nil
		})

	ctx.Step(`^enum "([^"]*)" with values (\w+)=(\d+), (\w+)=(\d+) and no explicit default$`,
		func(enumName, n1 string, v1 int64, n2 string, v2 int64) error {
			tc.enums = append(tc.enums, enumFixture{
				name: enumName,
				values: []enumValueFixture{
					{name: n1, number: int32(v1), hasNumber: true},
					{name: n2, number: int32(v2), hasNumber: true},
				},
			})
			return nil
		})

	ctx.Step(`^enum "([^"]*)" with a single value named "([^"]*)" and no number$`,
		func(enumName, valueName string) error {
			tc.enums = append(tc.enums, enumFixture{
				name:   enumName,
				values: []enumValueFixture{{name: valueName}},
			})
			return nil
		})

	ctx.Step(`^I parse the descriptor set$`, func() error {
		tc.defs, tc.parseErr = descriptor.Parse(tc.encode(), "bdd")
		return nil
	})

	ctx.Step(`^parsing succeeds$`, func() error {
		if tc.parseErr != nil {
			return fmt.Errorf("expected parse success, got error: %w", tc.parseErr)
		}
		return nil
	})

	ctx.Step(`^parsing fails with a schema incomplete error$`, func() error {
		if tc.parseErr == nil {
			return errors.New("expected a parse error, got none")
		}
		if !errors.Is(tc.parseErr, descriptor.ErrSchemaIncomplete) {
			return fmt.Errorf("expected ErrSchemaIncomplete, got: %v", tc.parseErr)
		}
		return nil
	})

	ctx.Step(`^(\d+) definitions are returned$`, func(n int) error {
		if len(tc.defs) != n {
			return fmt.Errorf("expected %d definitions, got %d", n, len(tc.defs))
		}
		return nil
	})

	ctx.Step(`^the definitions are, in order, "([^"]*)", "([^"]*)", "([^"]*)"$`,
		func(n1, n2, n3 string) error {
			want := []string{n1, n2, n3}
			got := make([]string, len(tc.defs))
			for i, d := range tc.defs {
				got[i] = d.FullName()
			}
			if strings.Join(got, ",") != strings.Join(want, ",") {
				return fmt.Errorf("expected definitions %v, got %v", want, got)
			}
			return nil
		})

	ctx.Step(`^message "([^"]*)" has field "([^"]*)" number (\d+) type (\w+) with no default$`,
		func(msgName, fieldName string, number int64, typ string) error {
			m, err := findMessage(tc.defs, msgName)
			if err != nil {
				return err
			}
			f, err := findField(m, fieldName)
			if err != nil {
				return err
			}
			wantType, err := scalarType(typ)
			if err != nil {
				return err
			}
			if f.Number != int32(number) {
				return fmt.Errorf("field %s: expected number %d, got %d", fieldName, number, f.Number)
			}
			if int32(f.Type) != wantType {
				return fmt.Errorf("field %s: expected type %d, got %d", fieldName, wantType, f.Type)
			}
			if f.HasDefault {
				return fmt.Errorf("field %s: expected no default, got %v", fieldName, f.DefaultValue)
			}
			return nil
		})

	ctx.Step(`^message "([^"]*)" has field "([^"]*)" with default (\d+)$`,
		func(msgName, fieldName string, want int64) error {
			m, err := findMessage(tc.defs, msgName)
			if err != nil {
				return err
			}
			f, err := findField(m, fieldName)
			if err != nil {
				return err
			}
			if !f.HasDefault {
				return fmt.Errorf("field %s: expected a default, got none", fieldName)
			}
			got, ok := f.DefaultValue.(uint32)
			if !ok {
				return fmt.Errorf("field %s: expected uint32 default, got %T", fieldName, f.DefaultValue)
			}
			if uint32(want) != got {
				return fmt.Errorf("field %s: expected default %d, got %d", fieldName, want, got)
			}
			return nil
		})

	ctx.Step(`^enum "([^"]*)" has default value (-?\d+)$`, func(enumName string, want int64) error {
		e, err := findEnum(tc.defs, enumName)
		if err != nil {
			return err
		}
		if e.Default != int32(want) {
			return fmt.Errorf("enum %s: expected default %d, got %d", enumName, want, e.Default)
		}
		return nil
	})
}

func scalarType(name string) (int32, error) {
	switch name {
	case "INT32":
		return typeInt32, nil
	case "UINT32":
		return typeUint32, nil
	default:
		return 0, fmt.Errorf("unsupported fixture scalar type %q", name)
	}
}

func fieldLabel(name string) (int32, error) {
	switch name {
	case "OPTIONAL":
		return labelOptional, nil
	default:
		return 0, fmt.Errorf("unsupported fixture label %q", name)
	}
}

func findMessage(defs []descriptor.Definition, name string) (*descriptor.MessageDef, error) {
	for _, d := range defs {
		if m, ok := d.(*descriptor.MessageDef); ok && m.FullName() == name {
			return m, nil
		}
	}
	return nil, fmt.Errorf("no message definition named %q", name)
}

func findEnum(defs []descriptor.Definition, name string) (*descriptor.EnumDef, error) {
	for _, d := range defs {
		if e, ok := d.(*descriptor.EnumDef); ok && e.FullName() == name {
			return e, nil
		}
	}
	return nil, fmt.Errorf("no enum definition named %q", name)
}

func findField(m *descriptor.MessageDef, name string) (*descriptor.FieldDef, error) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("message %q has no field named %q", m.FullName(), name)
}
