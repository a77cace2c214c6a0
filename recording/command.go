// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package recording

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/kawase/render"
)

// CommandType identifies the engine call a command records.
type CommandType uint8

const (
	// Resource commands
	CmdCreateTarget       CommandType = iota // Allocate a render target
	CmdUploadTarget                          // Upload pixels into a target
	CmdDestroyTarget                         // Release a target
	CmdCreateProgram                         // Compile a program
	CmdDestroyProgram                        // Release a program
	CmdCreateVertexBuffer                    // Upload vertices
	CmdDestroyVertexBuffer                   // Release a vertex buffer

	// State commands
	CmdBindTarget  // Select the draw destination
	CmdSetViewport // Set the viewport rectangle
	CmdUseProgram  // Select the program
	CmdSetTexture  // Bind a target to a texture location
	CmdSetUniform  // Write uniform values

	// Drawing commands
	CmdDraw  // Draw a vertex buffer
	CmdClear // Clear the bound target
)

// commandTypeNames maps CommandType values to their string representation.
var commandTypeNames = [...]string{
	CmdCreateTarget:        "CreateTarget",
	CmdUploadTarget:        "UploadTarget",
	CmdDestroyTarget:       "DestroyTarget",
	CmdCreateProgram:       "CreateProgram",
	CmdDestroyProgram:      "DestroyProgram",
	CmdCreateVertexBuffer:  "CreateVertexBuffer",
	CmdDestroyVertexBuffer: "DestroyVertexBuffer",
	CmdBindTarget:          "BindTarget",
	CmdSetViewport:         "SetViewport",
	CmdUseProgram:          "UseProgram",
	CmdSetTexture:          "SetTexture",
	CmdSetUniform:          "SetUniform",
	CmdDraw:                "Draw",
	CmdClear:               "Clear",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is implemented by all recorded commands.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType
}

// OutputLabel names the output surface in recorded commands.
const OutputLabel = "<output>"

// --------------------------------------------------------------------------
// Resource Commands
// --------------------------------------------------------------------------

// CreateTargetCommand records a target allocation.
type CreateTargetCommand struct {
	Desc render.TargetDescriptor
}

// Type implements Command.
func (CreateTargetCommand) Type() CommandType { return CmdCreateTarget }

// UploadTargetCommand records a pixel upload.
type UploadTargetCommand struct {
	Target string
	Bytes  int
}

// Type implements Command.
func (UploadTargetCommand) Type() CommandType { return CmdUploadTarget }

// DestroyTargetCommand records a target release.
type DestroyTargetCommand struct {
	Target string
}

// Type implements Command.
func (DestroyTargetCommand) Type() CommandType { return CmdDestroyTarget }

// CreateProgramCommand records a program compilation.
type CreateProgramCommand struct {
	Program string
}

// Type implements Command.
func (CreateProgramCommand) Type() CommandType { return CmdCreateProgram }

// DestroyProgramCommand records a program release.
type DestroyProgramCommand struct {
	Program string
}

// Type implements Command.
func (DestroyProgramCommand) Type() CommandType { return CmdDestroyProgram }

// CreateVertexBufferCommand records a vertex upload.
type CreateVertexBufferCommand struct {
	Buffer   string
	Vertices int
}

// Type implements Command.
func (CreateVertexBufferCommand) Type() CommandType { return CmdCreateVertexBuffer }

// DestroyVertexBufferCommand records a vertex buffer release.
type DestroyVertexBufferCommand struct {
	Buffer string
}

// Type implements Command.
func (DestroyVertexBufferCommand) Type() CommandType { return CmdDestroyVertexBuffer }

// --------------------------------------------------------------------------
// State Commands
// --------------------------------------------------------------------------

// BindTargetCommand records a change of draw destination.
// Target is OutputLabel for the output surface.
type BindTargetCommand struct {
	Target string
}

// Type implements Command.
func (BindTargetCommand) Type() CommandType { return CmdBindTarget }

// SetViewportCommand records a viewport change.
type SetViewportCommand struct {
	Viewport render.Viewport
}

// Type implements Command.
func (SetViewportCommand) Type() CommandType { return CmdSetViewport }

// UseProgramCommand records a program selection.
type UseProgramCommand struct {
	Program string
}

// Type implements Command.
func (UseProgramCommand) Type() CommandType { return CmdUseProgram }

// SetTextureCommand records a texture binding.
type SetTextureCommand struct {
	Program  string
	Location string
	Target   string
}

// Type implements Command.
func (SetTextureCommand) Type() CommandType { return CmdSetTexture }

// SetUniformCommand records a uniform write.
type SetUniformCommand struct {
	Program  string
	Location string
	Values   []float32
}

// Type implements Command.
func (SetUniformCommand) Type() CommandType { return CmdSetUniform }

// --------------------------------------------------------------------------
// Drawing Commands
// --------------------------------------------------------------------------

// DrawCommand records a draw with a snapshot of the inputs in effect.
type DrawCommand struct {
	Program  string
	Buffer   string
	Target   string
	Width    int
	Height   int
	Viewport render.Viewport

	// Textures maps texture location names to target labels.
	Textures map[string]string

	// Uniforms maps uniform names to their staged values.
	Uniforms map[string][]float32
}

// Type implements Command.
func (DrawCommand) Type() CommandType { return CmdDraw }

// ClearCommand records a clear of the bound target.
type ClearCommand struct {
	Target string
	Color  gputypes.Color
}

// Type implements Command.
func (ClearCommand) Type() CommandType { return CmdClear }
