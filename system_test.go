package nucleus

import (
	"reflect"
	"testing"

	"github.com/TheBitDrifter/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sysPos struct{ X int }
type sysVel struct{ X int }
type sysClock struct{ Tick int }

func TestSystemDescriptor_Validate(t *testing.T) {
	pos := FactoryNewComponent[sysPos]()
	clockType := reflect.TypeOf(sysClock{})

	tests := []struct {
		name    string
		desc    SystemDescriptor
		wantErr bool
	}{
		{
			name: "read plus read is fine",
			desc: SystemDescriptor{
				Name: "rr",
				Components: []ComponentAccess{
					{Component: pos, Access: Read},
					{Component: pos, Access: Read},
				},
			},
			wantErr: false,
		},
		{
			name: "read plus write conflicts",
			desc: SystemDescriptor{
				Name: "rw",
				Components: []ComponentAccess{
					{Component: pos, Access: Read},
					{Component: pos, Access: Write},
				},
			},
			wantErr: true,
		},
		{
			name: "double write conflicts",
			desc: SystemDescriptor{
				Name: "ww",
				Components: []ComponentAccess{
					{Component: pos, Access: Write},
					{Component: pos, Access: Write},
				},
			},
			wantErr: true,
		},
		{
			name: "global read plus write conflicts",
			desc: SystemDescriptor{
				Name: "grw",
				Globals: []GlobalAccess{
					{Type: clockType, Access: Read},
					{Type: clockType, Access: Write},
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.desc.validate()
			if tt.wantErr {
				var incompatible IncompatibleSystemParamsError
				assert.ErrorAs(t, err, &incompatible)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCompatible(t *testing.T) {
	sys := func(build func(*compiledSystem)) *compiledSystem {
		cs := &compiledSystem{}
		build(cs)
		return cs
	}

	tests := []struct {
		name string
		a, b *compiledSystem
		want bool
	}{
		{
			name: "two readers of the same component",
			a:    sys(func(cs *compiledSystem) { cs.componentRead.Mark(0) }),
			b:    sys(func(cs *compiledSystem) { cs.componentRead.Mark(0) }),
			want: true,
		},
		{
			name: "writer vs reader of the same component",
			a:    sys(func(cs *compiledSystem) { cs.componentWrite.Mark(0) }),
			b:    sys(func(cs *compiledSystem) { cs.componentRead.Mark(0) }),
			want: false,
		},
		{
			name: "two writers of the same component",
			a:    sys(func(cs *compiledSystem) { cs.componentWrite.Mark(0) }),
			b:    sys(func(cs *compiledSystem) { cs.componentWrite.Mark(0) }),
			want: false,
		},
		{
			name: "writers of disjoint components",
			a:    sys(func(cs *compiledSystem) { cs.componentWrite.Mark(0) }),
			b:    sys(func(cs *compiledSystem) { cs.componentWrite.Mark(1) }),
			want: true,
		},
		{
			name: "writer vs reader of the same global",
			a:    sys(func(cs *compiledSystem) { cs.globalWrite.Mark(0) }),
			b:    sys(func(cs *compiledSystem) { cs.globalRead.Mark(0) }),
			want: false,
		},
		{
			name: "whole-world system is incompatible with everything",
			a:    sys(func(cs *compiledSystem) { cs.desc.WholeWorld = true }),
			b:    sys(func(cs *compiledSystem) {}),
			want: false,
		},
		{
			name: "two whole-world systems",
			a:    sys(func(cs *compiledSystem) { cs.desc.WholeWorld = true }),
			b:    sys(func(cs *compiledSystem) { cs.desc.WholeWorld = true }),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compatible(tt.a, tt.b))
			assert.Equal(t, tt.want, compatible(tt.b, tt.a), "compatibility must be symmetric")
		})
	}
}

func TestBuildFilter_IncludeAndExclude(t *testing.T) {
	pos := FactoryNewComponent[sysPos]()
	vel := FactoryNewComponent[sysVel]()
	storage := Factory.NewStorage(table.Factory.NewSchema())

	_, err := storage.NewEntities(2, pos)
	require.NoError(t, err)
	_, err = storage.NewEntities(3, pos, vel)
	require.NoError(t, err)

	tests := []struct {
		name    string
		include []Component
		exclude []Component
		want    int
	}{
		{"include only", []Component{pos}, nil, 5},
		{"include and exclude", []Component{pos}, []Component{vel}, 2},
		{"exclude only", nil, []Component{vel}, 2},
		{"narrower include", []Component{vel}, nil, 3},
		{"no filter matches everything", nil, nil, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := buildFilter(tt.include, tt.exclude)
			got := Factory.NewCursor(node, storage).TotalMatched()
			assert.Equal(t, tt.want, got)
		})
	}
}
