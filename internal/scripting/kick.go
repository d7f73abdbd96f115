package scripting

import (
	"math"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// KickContext holds pre-packed data for one player/item kick check.
type KickContext struct {
	DX, DY    float64 // item minus player
	Distance  float64
	Proximity float64
	MaxSpeed  float64
	Friction  float64
}

// KickResult is returned by the Lua kick function.
type KickResult struct {
	Kicked   bool
	VX, VY   float64
	Friction float64
}

// CalcKick calls the Lua calc_kick function. Script failures are logged and
// answered with DefaultKick.
func (e *Engine) CalcKick(ctx KickContext) KickResult {
	fn := e.vm.GetGlobal("calc_kick")
	if fn == lua.LNil {
		e.log.Error("lua function calc_kick not found")
		return DefaultKick(ctx)
	}

	t := e.vm.NewTable()
	t.RawSetString("dx", lua.LNumber(ctx.DX))
	t.RawSetString("dy", lua.LNumber(ctx.DY))
	t.RawSetString("distance", lua.LNumber(ctx.Distance))
	t.RawSetString("proximity", lua.LNumber(ctx.Proximity))
	t.RawSetString("max_speed", lua.LNumber(ctx.MaxSpeed))
	t.RawSetString("friction", lua.LNumber(ctx.Friction))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua calc_kick error", zap.Error(err))
		return DefaultKick(ctx)
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("lua calc_kick returned non-table")
		return DefaultKick(ctx)
	}

	res := KickResult{
		Kicked:   rt.RawGetString("kicked") == lua.LTrue,
		VX:       lNum(rt, "vx"),
		VY:       lNum(rt, "vy"),
		Friction: lNum(rt, "friction"),
	}
	if math.IsNaN(res.VX) || math.IsNaN(res.VY) || res.Friction < 0 {
		e.log.Error("lua calc_kick returned invalid result",
			zap.Float64("vx", res.VX), zap.Float64("vy", res.VY), zap.Float64("friction", res.Friction))
		return DefaultKick(ctx)
	}
	return res
}

// DefaultKick is the built-in formula: speed falls off linearly from
// MaxSpeed at the player to zero at Proximity, directed away from the
// player.
func DefaultKick(ctx KickContext) KickResult {
	if ctx.Distance >= ctx.Proximity {
		return KickResult{}
	}
	speed := ctx.MaxSpeed - ctx.MaxSpeed*(ctx.Distance/ctx.Proximity)
	dx, dy, h := ctx.DX, ctx.DY, ctx.Distance
	if h == 0 {
		dx, dy, h = 0, -1, 1
	}
	ratio := speed / h
	return KickResult{
		Kicked:   true,
		VX:       dx * ratio,
		VY:       dy * ratio,
		Friction: ctx.Friction,
	}
}

// lNum reads a number field from a Lua table.
func lNum(t *lua.LTable, key string) float64 {
	return float64(lua.LVAsNumber(t.RawGetString(key)))
}
