package fpe

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/gretelai/gretel-fpe/subtle"
)

const testSecret = "2B7E151628AED2A6ABF7158809CF4F3CEF4359D8D580AA4F7F036D6F04FC6A94"

var (
	_ Transformer = (*FpeString)(nil)
	_ Transformer = (*FpeFloat)(nil)
)

func newStringTransformer(t *testing.T, config FpeStringConfig) *FpeString {
	t.Helper()
	xf, err := NewFpeString(config)
	if err != nil {
		t.Fatalf("Failed to create FpeString transformer: %v", err)
	}
	return xf
}

func newFloatTransformer(t *testing.T, config FpeFloatConfig) *FpeFloat {
	t.Helper()
	xf, err := NewFpeFloat(config)
	if err != nil {
		t.Fatalf("Failed to create FpeFloat transformer: %v", err)
	}
	return xf
}

func TestFpeStringGoldenStrings(t *testing.T) {
	tests := []struct {
		name  string
		radix int
		input string
		want  string
	}{
		{"digits", 10, "4123567891234567", "5931468769662449"},
		{"digits with spaces", 10, "4123 5678 9123 4567", "5931 4687 6966 2449"},
		{"spaced account number", 10, "601128 2195205 818", "447158 5942734 458"},
		{"punctuated id", 10, "169/61*009 38-34", "747/52*232 83-19"},
		{"alphanumeric", 36, "convertme", "2qjuxg7ju"},
		{"mixed case", 62, "John Doe", "2DZv ZmN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xf := newStringTransformer(t, FpeStringConfig{Radix: tt.radix, Secret: testSecret})

			out, err := xf.Transform(StringValue(tt.input))
			if err != nil {
				t.Fatalf("Failed to transform %q: %v", tt.input, err)
			}
			if out.Kind != KindString || out.Str != tt.want {
				t.Errorf("Transform(%q) = %q, want %q", tt.input, out.Str, tt.want)
			}

			back, err := xf.Restore(out)
			if err != nil {
				t.Fatalf("Failed to restore %q: %v", out.Str, err)
			}
			if back.Str != tt.input {
				t.Errorf("Restore(%q) = %q, want %q", out.Str, back.Str, tt.input)
			}
		})
	}
}

func TestFpeStringMasks(t *testing.T) {
	tests := []struct {
		name  string
		radix int
		masks []StringMask
		input string
		want  string
	}{
		{"after first space", 62, []StringMask{{MaskAfter: " "}}, "John Doe", "John BDy"},
		{"until first space", 62, []StringMask{{MaskUntil: " "}}, "John Doe", "Uugx Doe"},
		{"both name parts", 62, []StringMask{{MaskUntil: " "}, {MaskAfter: " "}}, "John Doe", "Uugx BDy"},
		{"keep first digit", 10, []StringMask{{StartPos: 1}}, "4123 5678 9012 3456", "4521 1021 2994 9272"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xf := newStringTransformer(t, FpeStringConfig{Radix: tt.radix, Secret: testSecret, Mask: tt.masks})

			out, err := xf.Transform(StringValue(tt.input))
			if err != nil {
				t.Fatalf("Failed to transform %q: %v", tt.input, err)
			}
			if out.Str != tt.want {
				t.Errorf("Transform(%q) = %q, want %q", tt.input, out.Str, tt.want)
			}

			back, err := xf.Restore(out)
			if err != nil {
				t.Fatalf("Failed to restore %q: %v", out.Str, err)
			}
			if back.Str != tt.input {
				t.Errorf("Restore(%q) = %q, want %q", out.Str, back.Str, tt.input)
			}
		})
	}
}

func TestFpeStringInt(t *testing.T) {
	xf := newStringTransformer(t, FpeStringConfig{Radix: 10, Secret: testSecret})

	t.Run("golden", func(t *testing.T) {
		out, err := xf.Transform(IntValue(100000000))
		if err != nil {
			t.Fatalf("Failed to transform: %v", err)
		}
		if out.Kind != KindInt || out.Int != 150991404 {
			t.Errorf("Transform(100000000) = %v, want 150991404", out)
		}

		back, err := xf.Restore(out)
		if err != nil {
			t.Fatalf("Failed to restore: %v", err)
		}
		if back.Int != 100000000 {
			t.Errorf("Restore(%d) = %d, want 100000000", out.Int, back.Int)
		}
	})

	t.Run("negative keeps sign", func(t *testing.T) {
		out, err := xf.Transform(IntValue(-100000000))
		if err != nil {
			t.Fatalf("Failed to transform: %v", err)
		}
		if out.Kind != KindInt || out.Int != -150991404 {
			t.Errorf("Transform(-100000000) = %v, want -150991404", out)
		}

		back, err := xf.Restore(out)
		if err != nil {
			t.Fatalf("Failed to restore: %v", err)
		}
		if back.Int != -100000000 {
			t.Errorf("Restore(%d) = %d, want -100000000", out.Int, back.Int)
		}
	})

	t.Run("single digit unchanged", func(t *testing.T) {
		for _, v := range []int64{0, 5, -7} {
			out, err := xf.Transform(IntValue(v))
			if err != nil {
				t.Fatalf("Failed to transform %d: %v", v, err)
			}
			if out.Kind != KindInt || out.Int != v {
				t.Errorf("Transform(%d) = %v, want unchanged", v, out)
			}
		}
	})

	t.Run("wide value round trip", func(t *testing.T) {
		const v = int64(123456789012345678)
		out, err := xf.Transform(IntValue(v))
		if err != nil {
			t.Fatalf("Failed to transform: %v", err)
		}
		if out.Kind != KindInt {
			t.Fatalf("Transform(%d) kind = %v, want KindInt", v, out.Kind)
		}
		if s := out.String(); len(s) != 18 || s[0] != '1' {
			t.Errorf("Transform(%d) = %s, want 18 digits with leading 1", v, s)
		}

		back, err := xf.Restore(out)
		if err != nil {
			t.Fatalf("Failed to restore: %v", err)
		}
		if back.Int != v {
			t.Errorf("Restore(%d) = %d, want %d", out.Int, back.Int, v)
		}
	})

	t.Run("overflow falls back to string", func(t *testing.T) {
		// 19 encrypted digits can exceed the int64 range, in which case
		// the transformed value keeps its string form.
		const v = int64(9123372036854775807)
		out, err := xf.Transform(IntValue(v))
		if err != nil {
			t.Fatalf("Failed to transform: %v", err)
		}
		s := out.String()
		if len(s) != 19 || s[0] != '9' {
			t.Errorf("Transform(%d) = %s, want 19 digits with leading 9", v, s)
		}
		if _, err := strconv.ParseUint(s, 10, 64); err != nil {
			t.Errorf("Transform(%d) = %s, want digits only", v, s)
		}
	})
}

func TestFpeStringTweakBindsCiphertext(t *testing.T) {
	const input = "4123567891234567"

	plain := newStringTransformer(t, FpeStringConfig{Radix: 10, Secret: testSecret})
	tweaked := newStringTransformer(t, FpeStringConfig{Radix: 10, Secret: testSecret, Tweak: []byte("field:ssn")})

	a, err := plain.Transform(StringValue(input))
	if err != nil {
		t.Fatalf("Failed to transform without tweak: %v", err)
	}
	b, err := tweaked.Transform(StringValue(input))
	if err != nil {
		t.Fatalf("Failed to transform with tweak: %v", err)
	}
	if a.Str == b.Str {
		t.Errorf("Expected different ciphertexts with different tweaks, both %q", a.Str)
	}

	back, err := tweaked.Restore(b)
	if err != nil {
		t.Fatalf("Failed to restore: %v", err)
	}
	if back.Str != input {
		t.Errorf("Restore(%q) = %q, want %q", b.Str, back.Str, input)
	}
}

func TestFpeStringModes(t *testing.T) {
	const input = "4123567891234567"

	zero := newStringTransformer(t, FpeStringConfig{Radix: 10, Secret: testSecret})
	cbc := newStringTransformer(t, FpeStringConfig{Radix: 10, Secret: testSecret, Mode: subtle.ModeCBC})
	fast := newStringTransformer(t, FpeStringConfig{Radix: 10, Secret: testSecret, Mode: subtle.ModeCBCFast})
	ecb := newStringTransformer(t, FpeStringConfig{Radix: 10, Secret: testSecret, Mode: subtle.ModeECB})

	zeroOut, err := zero.Transform(StringValue(input))
	if err != nil {
		t.Fatalf("Failed to transform with zero mode: %v", err)
	}
	cbcOut, err := cbc.Transform(StringValue(input))
	if err != nil {
		t.Fatalf("Failed to transform with CBC: %v", err)
	}
	fastOut, err := fast.Transform(StringValue(input))
	if err != nil {
		t.Fatalf("Failed to transform with chained CBC: %v", err)
	}
	ecbOut, err := ecb.Transform(StringValue(input))
	if err != nil {
		t.Fatalf("Failed to transform with ECB: %v", err)
	}

	if zeroOut.Str != cbcOut.Str {
		t.Errorf("Zero mode = %q, ModeCBC = %q, want equal", zeroOut.Str, cbcOut.Str)
	}
	if fastOut.Str != cbcOut.Str {
		t.Errorf("ModeCBCFast = %q, ModeCBC = %q, want equal", fastOut.Str, cbcOut.Str)
	}
	if ecbOut.Str == cbcOut.Str {
		t.Errorf("Expected ECB and CBC ciphertexts to differ, both %q", ecbOut.Str)
	}

	back, err := ecb.Restore(ecbOut)
	if err != nil {
		t.Fatalf("Failed to restore ECB ciphertext: %v", err)
	}
	if back.Str != input {
		t.Errorf("Restore(%q) = %q, want %q", ecbOut.Str, back.Str, input)
	}
}

func TestFpeStringEmptyAndOversize(t *testing.T) {
	xf := newStringTransformer(t, FpeStringConfig{Radix: 10, Secret: testSecret})

	t.Run("empty unchanged", func(t *testing.T) {
		out, err := xf.Transform(StringValue(""))
		if err != nil {
			t.Fatalf("Failed to transform empty string: %v", err)
		}
		if out.Str != "" {
			t.Errorf("Transform(\"\") = %q, want empty", out.Str)
		}
	})

	t.Run("oversize unchanged", func(t *testing.T) {
		long := strings.Repeat("1", maxStrLen)
		out, err := xf.Transform(StringValue(long))
		if err != nil {
			t.Fatalf("Failed to transform oversize string: %v", err)
		}
		if out.Str != long {
			t.Error("Expected oversize string to pass through unchanged")
		}
		back, err := xf.Restore(StringValue(long))
		if err != nil {
			t.Fatalf("Failed to restore oversize string: %v", err)
		}
		if back.Str != long {
			t.Error("Expected oversize string to pass through restore unchanged")
		}
	})

	t.Run("below cap transforms", func(t *testing.T) {
		almost := strings.Repeat("1", maxStrLen-1)
		out, err := xf.Transform(StringValue(almost))
		if err != nil {
			t.Fatalf("Failed to transform %d digit string: %v", maxStrLen-1, err)
		}
		if out.Str == almost {
			t.Error("Expected string below the cap to change")
		}
		back, err := xf.Restore(out)
		if err != nil {
			t.Fatalf("Failed to restore: %v", err)
		}
		if back.Str != almost {
			t.Error("Round trip mismatch for string below the cap")
		}
	})
}

func TestFpeStringDeterminism(t *testing.T) {
	xf := newStringTransformer(t, FpeStringConfig{Radix: 62, Secret: testSecret})

	first, err := xf.Transform(StringValue("Determinism Test 123"))
	if err != nil {
		t.Fatalf("Failed to transform: %v", err)
	}
	second, err := xf.Transform(StringValue("Determinism Test 123"))
	if err != nil {
		t.Fatalf("Failed to transform: %v", err)
	}
	if first.Str != second.Str {
		t.Errorf("Same input produced %q and %q, want identical", first.Str, second.Str)
	}
}

func TestFpeStringHexCase(t *testing.T) {
	// Radix 16 accepts both cases on input, but ciphertext and restored
	// values use the canonical lowercase alphabet.
	xf := newStringTransformer(t, FpeStringConfig{Radix: 16, Secret: testSecret})

	out, err := xf.Transform(StringValue("DEAD-BEEF"))
	if err != nil {
		t.Fatalf("Failed to transform: %v", err)
	}
	if len(out.Str) != 9 || out.Str[4] != '-' {
		t.Errorf("Transform(%q) = %q, want 9 characters with a dash at index 4", "DEAD-BEEF", out.Str)
	}
	for i, c := range out.Str {
		if i == 4 {
			continue
		}
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			t.Errorf("Transform(%q) = %q, want lowercase hex at index %d", "DEAD-BEEF", out.Str, i)
		}
	}

	back, err := xf.Restore(out)
	if err != nil {
		t.Fatalf("Failed to restore: %v", err)
	}
	if back.Str != "dead-beef" {
		t.Errorf("Restore(%q) = %q, want %q", out.Str, back.Str, "dead-beef")
	}

	lower, err := xf.Transform(StringValue("dead-beef"))
	if err != nil {
		t.Fatalf("Failed to transform: %v", err)
	}
	if lower.Str != out.Str {
		t.Errorf("Transform(%q) = %q, want %q: case must not change the ciphertext", "dead-beef", lower.Str, out.Str)
	}
}

func TestFpeStringErrors(t *testing.T) {
	t.Run("bad secret", func(t *testing.T) {
		if _, err := NewFpeString(FpeStringConfig{Radix: 10, Secret: "not-hex"}); err == nil {
			t.Error("Expected error for non-hex secret")
		}
	})

	t.Run("bad key size", func(t *testing.T) {
		if _, err := NewFpeString(FpeStringConfig{Radix: 10, Secret: "2B7E151628AED2A6ABF7"}); err == nil {
			t.Error("Expected error for 80-bit key")
		}
	})

	t.Run("bad radix", func(t *testing.T) {
		if _, err := NewFpeString(FpeStringConfig{Radix: 37, Secret: testSecret}); err == nil {
			t.Error("Expected error for radix 37")
		}
	})

	t.Run("conflicting mask", func(t *testing.T) {
		cfg := FpeStringConfig{
			Radix:  10,
			Secret: testSecret,
			Mask:   []StringMask{{StartPos: 1, MaskAfter: " "}},
		}
		if _, err := NewFpeString(cfg); err == nil {
			t.Error("Expected error for mask with StartPos and MaskAfter")
		}
		cfg.Mask = []StringMask{{EndPos: 4, MaskUntil: " "}}
		if _, err := NewFpeString(cfg); err == nil {
			t.Error("Expected error for mask with EndPos and MaskUntil")
		}
		cfg.Mask = []StringMask{{StartPos: -2}}
		if _, err := NewFpeString(cfg); err == nil {
			t.Error("Expected error for negative StartPos")
		}
	})

	t.Run("float value", func(t *testing.T) {
		xf := newStringTransformer(t, FpeStringConfig{Radix: 10, Secret: testSecret})
		if _, err := xf.Transform(FloatValue(1.5)); err == nil {
			t.Error("Expected error transforming a float value")
		}
		if _, err := xf.Restore(FloatValue(1.5)); err == nil {
			t.Error("Expected error restoring a float value")
		}
	})

	t.Run("mask delimiter missing", func(t *testing.T) {
		xf := newStringTransformer(t, FpeStringConfig{
			Radix:  62,
			Secret: testSecret,
			Mask:   []StringMask{{MaskAfter: "@"}},
		})
		if _, err := xf.Transform(StringValue("no delimiter here")); err == nil {
			t.Error("Expected error for value without the mask delimiter")
		}
	})
}

func TestFpeFloatRoundTrips(t *testing.T) {
	tests := []struct {
		name      string
		precision int
		value     float64
	}{
		{"zero", 3, 0.0},
		{"negative zero", 3, math.Copysign(0, -1)},
		{"latitude", 3, -70.783},
		{"longitude", 3, 112.221},
		{"hundredths", 2, 1.25},
		{"tenths", 1, 1234.5},
		{"whole", 0, 150},
		{"thousandth", 3, 0.001},
		{"wide", 3, 99999999999.999},
	}

	changed := 0
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xf := newFloatTransformer(t, FpeFloatConfig{Radix: 10, Secret: testSecret, FloatPrecision: tt.precision})

			out, err := xf.Transform(FloatValue(tt.value))
			if err != nil {
				t.Fatalf("Failed to transform %v: %v", tt.value, err)
			}
			if out.Kind != KindFloat {
				t.Fatalf("Transform(%v) kind = %v, want KindFloat", tt.value, out.Kind)
			}
			if math.Signbit(out.Float) != math.Signbit(tt.value) {
				t.Errorf("Transform(%v) = %v, sign flipped", tt.value, out.Float)
			}

			inRender := strconv.FormatFloat(math.Abs(tt.value), 'f', tt.precision, 64)
			outRender := strconv.FormatFloat(math.Abs(out.Float), 'f', tt.precision, 64)
			if len(outRender) != len(inRender) || outRender[0] != inRender[0] {
				t.Errorf("Transform(%v) = %v, want same width and leading digit as %s", tt.value, out.Float, inRender)
			}

			back, err := xf.Restore(out)
			if err != nil {
				t.Fatalf("Failed to restore %v: %v", out.Float, err)
			}
			if back.Float != tt.value || math.Signbit(back.Float) != math.Signbit(tt.value) {
				t.Errorf("Restore(%v) = %v, want %v", out.Float, back.Float, tt.value)
			}

			if out.Float != tt.value {
				changed++
			}
		})
	}
	if changed == 0 {
		t.Error("Expected at least one value to change under transformation")
	}
}

func TestFpeFloatUnchanged(t *testing.T) {
	tests := []struct {
		name      string
		precision int
		value     float64
	}{
		{"too precise", 3, 1.23e-7},
		{"rounds away", 1, 70.783},
		{"too wide", 0, 1e16},
		{"max float", 2, math.MaxFloat64},
		{"too short", 1, 0.5},
		{"two digits", 0, 42},
		{"one digit", 0, 5},
		{"positive infinity", 2, math.Inf(1)},
		{"negative infinity", 2, math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xf := newFloatTransformer(t, FpeFloatConfig{Radix: 10, Secret: testSecret, FloatPrecision: tt.precision})

			out, err := xf.Transform(FloatValue(tt.value))
			if err != nil {
				t.Fatalf("Failed to transform %v: %v", tt.value, err)
			}
			if out.Float != tt.value {
				t.Errorf("Transform(%v) = %v, want unchanged", tt.value, out.Float)
			}
			back, err := xf.Restore(out)
			if err != nil {
				t.Fatalf("Failed to restore %v: %v", out.Float, err)
			}
			if back.Float != tt.value {
				t.Errorf("Restore(%v) = %v, want unchanged", out.Float, back.Float)
			}
		})
	}

	t.Run("NaN", func(t *testing.T) {
		xf := newFloatTransformer(t, FpeFloatConfig{Radix: 10, Secret: testSecret, FloatPrecision: 2})
		out, err := xf.Transform(FloatValue(math.NaN()))
		if err != nil {
			t.Fatalf("Failed to transform NaN: %v", err)
		}
		if !math.IsNaN(out.Float) {
			t.Errorf("Transform(NaN) = %v, want NaN", out.Float)
		}
	})
}

func TestFpeFloatStrings(t *testing.T) {
	xf := newFloatTransformer(t, FpeFloatConfig{Radix: 94, Secret: testSecret, FloatPrecision: 2})

	for _, input := range []string{"123.45", "-9.75"} {
		out, err := xf.Transform(StringValue(input))
		if err != nil {
			t.Fatalf("Failed to transform %q: %v", input, err)
		}
		if out.Kind != KindString {
			t.Fatalf("Transform(%q) kind = %v, want KindString", input, out.Kind)
		}
		if len(out.Str) != len(input) || out.Str[0] != input[0] {
			t.Errorf("Transform(%q) = %q, want same width and leading character", input, out.Str)
		}
		if strings.Count(out.Str, ".") != 1 {
			t.Errorf("Transform(%q) = %q, want one decimal point", input, out.Str)
		}

		back, err := xf.Restore(out)
		if err != nil {
			t.Fatalf("Failed to restore %q: %v", out.Str, err)
		}
		if back.Str != input {
			t.Errorf("Restore(%q) = %q, want %q", out.Str, back.Str, input)
		}
	}

	t.Run("too precise passes through", func(t *testing.T) {
		out, err := xf.Transform(StringValue("123.456"))
		if err != nil {
			t.Fatalf("Failed to transform: %v", err)
		}
		if out.Str != "123.456" {
			t.Errorf("Transform(%q) = %q, want unchanged", "123.456", out.Str)
		}
		back, err := xf.Restore(out)
		if err != nil {
			t.Fatalf("Failed to restore: %v", err)
		}
		if back.Str != "123.456" {
			t.Errorf("Restore(%q) = %q, want unchanged", out.Str, back.Str)
		}
	})
}

func TestFpeFloatStringCleaning(t *testing.T) {
	xf := newFloatTransformer(t, FpeFloatConfig{Radix: 10, Secret: testSecret, FloatPrecision: 0})

	t.Run("digits round trip", func(t *testing.T) {
		out, err := xf.Transform(StringValue("70783"))
		if err != nil {
			t.Fatalf("Failed to transform: %v", err)
		}
		back, err := xf.Restore(out)
		if err != nil {
			t.Fatalf("Failed to restore %q: %v", out.Str, err)
		}
		if back.Str != "70783" {
			t.Errorf("Restore(%q) = %q, want %q", out.Str, back.Str, "70783")
		}
	})

	t.Run("punctuation dropped by cleaning", func(t *testing.T) {
		// Radix 10 cleaning keeps only the digits, so the decimal point
		// of a string input does not survive the round trip.
		out, err := xf.Transform(StringValue("70.783"))
		if err != nil {
			t.Fatalf("Failed to transform: %v", err)
		}
		back, err := xf.Restore(out)
		if err != nil {
			t.Fatalf("Failed to restore %q: %v", out.Str, err)
		}
		if back.Str != "70783" {
			t.Errorf("Restore(%q) = %q, want %q", out.Str, back.Str, "70783")
		}
	})

	t.Run("unparseable", func(t *testing.T) {
		if _, err := xf.Transform(StringValue("no digits?!")); err == nil {
			t.Error("Expected error for value with no parseable digits")
		}
	})
}

func TestFpeFloatErrors(t *testing.T) {
	t.Run("int value", func(t *testing.T) {
		xf := newFloatTransformer(t, FpeFloatConfig{Radix: 10, Secret: testSecret, FloatPrecision: 2})
		if _, err := xf.Transform(IntValue(5)); err == nil {
			t.Error("Expected error transforming an int value")
		}
	})

	t.Run("bad precision", func(t *testing.T) {
		for _, p := range []int{-1, 16} {
			if _, err := NewFpeFloat(FpeFloatConfig{Radix: 10, Secret: testSecret, FloatPrecision: p}); err == nil {
				t.Errorf("Expected error for precision %d", p)
			}
		}
	})

	t.Run("bad radix", func(t *testing.T) {
		if _, err := NewFpeFloat(FpeFloatConfig{Radix: 0, Secret: testSecret, FloatPrecision: 2}); err == nil {
			t.Error("Expected error for radix 0")
		}
	})

	t.Run("bad secret", func(t *testing.T) {
		if _, err := NewFpeFloat(FpeFloatConfig{Radix: 10, Secret: "xyz", FloatPrecision: 2}); err == nil {
			t.Error("Expected error for non-hex secret")
		}
	})
}

func TestFpeFloatDeterminism(t *testing.T) {
	xf := newFloatTransformer(t, FpeFloatConfig{Radix: 10, Secret: testSecret, FloatPrecision: 3})

	first, err := xf.Transform(FloatValue(-70.783))
	if err != nil {
		t.Fatalf("Failed to transform: %v", err)
	}
	second, err := xf.Transform(FloatValue(-70.783))
	if err != nil {
		t.Fatalf("Failed to transform: %v", err)
	}
	if first.Float != second.Float {
		t.Errorf("Same input produced %v and %v, want identical", first.Float, second.Float)
	}
}
