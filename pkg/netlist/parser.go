// Package netlist turns the free-form textual netlist grammar (spec.md §6)
// into a built circuit.Circuit. It owns node-name resolution and per-line
// device construction; everything numerical happens downstream in
// pkg/circuit, pkg/device, and pkg/newton.
package netlist

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/halvorsen-eng/mnatran/pkg/circuit"
	"github.com/halvorsen-eng/mnatran/pkg/device"
	"github.com/halvorsen-eng/mnatran/pkg/simerr"
	"github.com/halvorsen-eng/mnatran/pkg/waveform"
)

// TranDirective is the parsed .TRAN line: t_total n_points method
// n_substeps [UIC].
type TranDirective struct {
	TotalTime float64
	NPoints   int
	Method    device.Method
	NSubsteps int
	UIC       bool
}

// Netlist is the textual description after line-level parsing but before
// device construction: node names are already resolved to stable indices in
// first-reference order (spec.md §3's "names resolved to indices on first
// reference").
type Netlist struct {
	DeclaredNodeCount int // informational upper bound from the first non-comment line; not enforced
	NodeNames         []string

	// Seed is the value of an optional .SEED line; HasSeed reports whether
	// one was present, so the CLI can tell "absent" apart from "explicitly
	// bound to the zero seed".
	Seed    int64
	HasSeed bool

	nodeIndex map[string]int
	lines     []rawLine
	models    map[string]modelDef
	Tran      TranDirective
	hasTran   bool
}

// modelDef is a parsed .MODEL line: a named parameter set bound to one of
// the four device kinds a model can describe.
type modelDef struct {
	Kind   string // NPN, PNP, NMOS, PMOS, or D
	Params map[string]float64
}

type rawLine struct {
	fields []string
}

var valueRe = regexp.MustCompile(`^([-+]?\d*\.?\d+)(?:[eE]([-+]?\d+))?(meg|[TGKkmunpf])?$`)

// unitMap gives each unit suffix's power of ten.
var unitMap = map[string]int{
	"T": 12, "G": 9, "meg": 6, "K": 3, "k": 3,
	"m": -3, "u": -6, "n": -9, "p": -12, "f": -15,
}

// ParseValue parses a numeric literal with an optional SPICE-style unit
// suffix, e.g. "1k" -> 1000, "10meg" -> 1e7, "2.2n" -> 2.2e-9.
func ParseValue(tok string) (float64, error) {
	m := valueRe.FindStringSubmatch(strings.TrimSpace(tok))
	if m == nil {
		return 0, fmt.Errorf("invalid numeric value %q", tok)
	}
	exp := unitMap[m[3]]
	if m[2] != "" {
		e, err := strconv.Atoi(m[2])
		if err != nil {
			return 0, err
		}
		exp += e
	}
	// Folding the suffix into the decimal exponent makes "2.2n" parse to
	// exactly the same double as the literal 2.2e-9.
	return strconv.ParseFloat(m[1]+"e"+strconv.Itoa(exp), 64)
}

// Parse reads a netlist. It records node references and stashes one raw
// line per device for Build to construct later, once the whole file
// (including a .TRAN directive that may reference the chosen method) has
// been seen.
func Parse(r io.Reader) (*Netlist, error) {
	nl := &Netlist{nodeIndex: map[string]int{}, models: map[string]modelDef{}}

	scanner := bufio.NewScanner(r)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "*") {
			continue
		}

		if first {
			first = false
			if n, err := strconv.Atoi(line); err == nil {
				nl.DeclaredNodeCount = n
				continue
			}
			// Not a bare integer: treat leniently as a normal line rather
			// than requiring the node-count header.
		}
		if strings.HasPrefix(line, ".") {
			upper := strings.ToUpper(line)
			switch {
			case strings.HasPrefix(upper, ".TRAN"):
				if err := nl.parseTran(line); err != nil {
					return nil, err
				}
				nl.hasTran = true
			case strings.HasPrefix(upper, ".MODEL"):
				if err := nl.parseModel(line); err != nil {
					return nil, err
				}
			case strings.HasPrefix(upper, ".SEED"):
				if err := nl.parseSeed(line); err != nil {
					return nil, err
				}
			}
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		nl.lines = append(nl.lines, rawLine{fields: fields})

		// Record this line's node references now, in first-reference order.
		nodeCount := 0
		switch strings.ToUpper(fields[0][:1]) {
		case "R", "L", "X", "C", "I", "V", "D", "N":
			nodeCount = 2
		case "Q":
			nodeCount = 3
		case "E", "F", "G", "H", "O", "M":
			nodeCount = 4
		}
		if _, ok := logicGateKinds[fields[0][0]]; ok {
			nodeCount = len(fields) - 5
		}
		for i := 1; i <= nodeCount && i < len(fields); i++ {
			nl.resolveNode(fields[i])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nl, nil
}

func (nl *Netlist) parseTran(line string) error {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return fmt.Errorf("insufficient .TRAN parameters: %s", line)
	}

	total, err := ParseValue(fields[1])
	if err != nil {
		return fmt.Errorf(".TRAN total time: %w", err)
	}
	npoints, err := strconv.Atoi(fields[2])
	if err != nil {
		return fmt.Errorf(".TRAN n_points: %w", err)
	}
	method, err := parseMethod(fields[3])
	if err != nil {
		return err
	}
	nsub, err := strconv.Atoi(fields[4])
	if err != nil {
		return fmt.Errorf(".TRAN n_substeps: %w", err)
	}

	uic := len(fields) > 5 && strings.EqualFold(fields[5], "UIC")
	nl.Tran = TranDirective{TotalTime: total, NPoints: npoints, Method: method, NSubsteps: nsub, UIC: uic}
	return nil
}

// parseModel parses ".MODEL <name> <NPN|PNP|NMOS|PMOS|D> (param=value ...)".
// The parenthesized parameter list follows the same "(" ")" -> space
// flattening buildSource uses for SIN/PULSE parameter lists.
func (nl *Netlist) parseModel(line string) error {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return fmt.Errorf(".MODEL: expected name kind [(param=value ...)]: %s", line)
	}
	name := fields[1]
	kind := strings.ToUpper(fields[2])
	switch kind {
	case "NPN", "PNP", "NMOS", "PMOS", "D":
	default:
		return fmt.Errorf(".MODEL %s: unknown kind %q", name, fields[2])
	}

	rest := strings.NewReplacer("(", " ", ")", " ").Replace(strings.Join(fields[3:], " "))
	params := map[string]float64{}
	for _, tok := range strings.Fields(rest) {
		key, val, ok := strings.Cut(tok, "=")
		if !ok {
			return fmt.Errorf(".MODEL %s: malformed parameter %q", name, tok)
		}
		v, err := ParseValue(val)
		if err != nil {
			return fmt.Errorf(".MODEL %s: parameter %s: %w", name, key, err)
		}
		params[strings.ToUpper(key)] = v
	}
	nl.models[name] = modelDef{Kind: kind, Params: params}
	return nil
}

func (nl *Netlist) parseSeed(line string) error {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return fmt.Errorf(".SEED: expected an integer argument: %s", line)
	}
	v, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return fmt.Errorf(".SEED: %w", err)
	}
	nl.Seed, nl.HasSeed = v, true
	return nil
}

func parseMethod(tok string) (device.Method, error) {
	switch strings.ToUpper(tok) {
	case "BE":
		return device.BackwardEuler, nil
	case "FE":
		return device.ForwardEuler, nil
	case "TR":
		return device.Trapezoidal, nil
	default:
		return 0, fmt.Errorf("unknown integration method %q", tok)
	}
}

func (nl *Netlist) resolveNode(name string) int {
	if name == "0" || strings.EqualFold(name, "gnd") {
		return 0
	}
	if idx, ok := nl.nodeIndex[name]; ok {
		return idx
	}
	idx := len(nl.NodeNames) + 1
	nl.NodeNames = append(nl.NodeNames, name)
	nl.nodeIndex[name] = idx
	return idx
}

func parseIC(trailing []string) float64 {
	for _, tok := range trailing {
		if strings.HasPrefix(strings.ToUpper(tok), "IC=") {
			if v, err := ParseValue(tok[3:]); err == nil {
				return v
			}
		}
	}
	return 0
}

var logicGateKinds = map[byte]device.GateKind{
	'>': device.GateNOT,
	'(': device.GateAND,
	')': device.GateNAND,
	'{': device.GateOR,
	'}': device.GateNOR,
	'[': device.GateXOR,
	']': device.GateXNOR,
}

// Build constructs every device in netlist order, resolving K's
// inductor-name references against L devices declared earlier in the file
// (spec.md §3's weak-reference rule). It returns the devices and the node
// names in index order (NodeNames[i-1] names node i).
func (nl *Netlist) Build() ([]device.Device, []string, error) {
	devices := make([]device.Device, 0, len(nl.lines))
	inductors := map[string]device.CoupledInductor{}

	for _, rl := range nl.lines {
		d, err := nl.buildDevice(rl.fields, inductors)
		if err != nil {
			return nil, nil, err
		}
		devices = append(devices, d)
		if l, ok := d.(*device.InductorBranch); ok {
			inductors[l.Name()] = l
		}
	}
	return devices, nl.NodeNames, nil
}

// BuildCircuit runs Build and hands the result to circuit.Build, completing
// the extra-variable allocation pass and method-compatibility checks.
func (nl *Netlist) BuildCircuit(name string) (*circuit.Circuit, error) {
	if !nl.hasTran {
		return nil, fmt.Errorf("netlist has no .TRAN directive")
	}

	devices, nodeNames, err := nl.Build()
	if err != nil {
		return nil, err
	}

	c := circuit.New(name, len(nodeNames))
	if err := c.Build(devices, nodeNames, nl.Tran.Method); err != nil {
		return nil, err
	}
	return c, nil
}

func (nl *Netlist) buildDevice(f []string, inductors map[string]device.CoupledInductor) (device.Device, error) {
	name := f[0]
	if len(name) == 0 {
		return nil, fmt.Errorf("empty device name")
	}

	if _, ok := logicGateKinds[name[0]]; ok {
		return nl.buildLogicGate(name, f)
	}

	switch strings.ToUpper(string(name[0])) {
	case "R":
		return nl.buildResistor(name, f)
	case "L":
		return nl.buildInductorBranch(name, f)
	case "X":
		return nl.buildInductorNodal(name, f)
	case "C":
		return nl.buildCapacitor(name, f)
	case "K":
		return nl.buildMutual(name, f, inductors)
	case "E":
		nodes, gain, err := nl.buildFourTerminal(name, f)
		if err != nil {
			return nil, err
		}
		return device.NewVCVS(name, nodes, gain), nil
	case "F":
		nodes, gain, err := nl.buildFourTerminal(name, f)
		if err != nil {
			return nil, err
		}
		return device.NewCCCS(name, nodes, gain), nil
	case "G":
		nodes, gm, err := nl.buildFourTerminal(name, f)
		if err != nil {
			return nil, err
		}
		return device.NewVCCS(name, nodes, gm), nil
	case "H":
		nodes, rm, err := nl.buildFourTerminal(name, f)
		if err != nil {
			return nil, err
		}
		return device.NewCCVS(name, nodes, rm), nil
	case "I":
		return nl.buildSource(name, f, false)
	case "V":
		return nl.buildSource(name, f, true)
	case "O":
		return nl.buildOpamp(name, f)
	case "D":
		return nl.buildDiode(name, f)
	case "M":
		return nl.buildMOSFET(name, f)
	case "Q":
		return nl.buildBJT(name, f)
	case "N":
		return nl.buildPWLResistor(name, f)
	default:
		return nil, &simerr.UnknownDevice{Token: name}
	}
}

func (nl *Netlist) buildResistor(name string, f []string) (device.Device, error) {
	if len(f) < 4 {
		return nil, fmt.Errorf("%s: expected n1 n2 R", name)
	}
	n1, n2 := nl.resolveNode(f[1]), nl.resolveNode(f[2])
	r, err := ParseValue(f[3])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return device.NewResistor(name, []int{n1, n2}, r), nil
}

func (nl *Netlist) buildInductorBranch(name string, f []string) (device.Device, error) {
	if len(f) < 4 {
		return nil, fmt.Errorf("%s: expected n1 n2 L [IC=I0]", name)
	}
	n1, n2 := nl.resolveNode(f[1]), nl.resolveNode(f[2])
	henries, err := ParseValue(f[3])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return device.NewInductorBranch(name, []int{n1, n2}, henries, parseIC(f[4:])), nil
}

func (nl *Netlist) buildInductorNodal(name string, f []string) (device.Device, error) {
	if len(f) < 4 {
		return nil, fmt.Errorf("%s: expected n1 n2 L [IC=I0]", name)
	}
	n1, n2 := nl.resolveNode(f[1]), nl.resolveNode(f[2])
	henries, err := ParseValue(f[3])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return device.NewInductorNodal(name, []int{n1, n2}, henries, parseIC(f[4:])), nil
}

func (nl *Netlist) buildCapacitor(name string, f []string) (device.Device, error) {
	if len(f) < 4 {
		return nil, fmt.Errorf("%s: expected n1 n2 C [IC=V0]", name)
	}
	n1, n2 := nl.resolveNode(f[1]), nl.resolveNode(f[2])
	farads, err := ParseValue(f[3])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return device.NewCapacitor(name, []int{n1, n2}, farads, parseIC(f[4:])), nil
}

func (nl *Netlist) buildMutual(name string, f []string, inductors map[string]device.CoupledInductor) (device.Device, error) {
	if len(f) < 4 {
		return nil, fmt.Errorf("%s: expected L_ref_1 L_ref_2 k", name)
	}
	l1, ok := inductors[f[1]]
	if !ok {
		return nil, &simerr.CouplingReferencesUnknownInductor{Name: f[1]}
	}
	l2, ok := inductors[f[2]]
	if !ok {
		return nil, &simerr.CouplingReferencesUnknownInductor{Name: f[2]}
	}
	k, err := ParseValue(f[3])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return device.NewMutual(name, l1, l2, k), nil
}

// buildFourTerminal parses the shared E|F|G|H shape: n1 n2 nc1 nc2 gain.
func (nl *Netlist) buildFourTerminal(name string, f []string) ([]int, float64, error) {
	if len(f) < 6 {
		return nil, 0, fmt.Errorf("%s: expected n1 n2 nc1 nc2 gain", name)
	}
	nodes := []int{
		nl.resolveNode(f[1]), nl.resolveNode(f[2]),
		nl.resolveNode(f[3]), nl.resolveNode(f[4]),
	}
	gain, err := ParseValue(f[5])
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", name, err)
	}
	return nodes, gain, nil
}

func (nl *Netlist) buildOpamp(name string, f []string) (device.Device, error) {
	if len(f) < 5 {
		return nil, fmt.Errorf("%s: expected nout+ nout- nin+ nin-", name)
	}
	nodes := []int{
		nl.resolveNode(f[1]), nl.resolveNode(f[2]),
		nl.resolveNode(f[3]), nl.resolveNode(f[4]),
	}
	return device.NewOpamp(name, nodes), nil
}

func (nl *Netlist) buildDiode(name string, f []string) (device.Device, error) {
	if len(f) < 3 {
		return nil, fmt.Errorf("%s: expected n1 n2 [modelName]", name)
	}
	n1, n2 := nl.resolveNode(f[1]), nl.resolveNode(f[2])
	nodes := []int{n1, n2}
	if len(f) > 3 {
		m, ok := nl.models[f[3]]
		if !ok {
			return nil, fmt.Errorf("%s: unknown model %q", name, f[3])
		}
		if m.Kind != "D" {
			return nil, fmt.Errorf("%s: model %q is kind %s, not D", name, f[3], m.Kind)
		}
		return device.NewDiodeModel(name, nodes, m.Params), nil
	}
	return device.NewDiode(name, nodes, device.DefaultDiodeIs, device.DefaultDiodeN), nil
}

func (nl *Netlist) buildBJT(name string, f []string) (device.Device, error) {
	if len(f) < 5 {
		return nil, fmt.Errorf("%s: expected nc nb ne NPN|PNP|modelName", name)
	}
	nodes := []int{nl.resolveNode(f[1]), nl.resolveNode(f[2]), nl.resolveNode(f[3])}

	switch strings.ToUpper(f[4]) {
	case "NPN":
		return device.NewBJT(name, nodes, device.DefaultBJTIs, device.DefaultAlphaF, device.DefaultAlphaR, false), nil
	case "PNP":
		return device.NewBJT(name, nodes, device.DefaultBJTIs, device.DefaultAlphaF, device.DefaultAlphaR, true), nil
	}
	m, ok := nl.models[f[4]]
	if !ok {
		return nil, fmt.Errorf("%s: unknown model %q", name, f[4])
	}
	var isPNP bool
	switch m.Kind {
	case "NPN":
		isPNP = false
	case "PNP":
		isPNP = true
	default:
		return nil, fmt.Errorf("%s: model %q is kind %s, not NPN/PNP", name, f[4], m.Kind)
	}
	return device.NewBJTModel(name, nodes, isPNP, m.Params), nil
}

func (nl *Netlist) buildMOSFET(name string, f []string) (device.Device, error) {
	if len(f) < 8 {
		return nil, fmt.Errorf("%s: expected nd ng ns nb NMOS|PMOS L=.. W=..", name)
	}
	nodes := []int{
		nl.resolveNode(f[1]), nl.resolveNode(f[2]),
		nl.resolveNode(f[3]), nl.resolveNode(f[4]),
	}
	kindTok := strings.ToUpper(f[5])
	var isPMOS bool
	var model *modelDef
	switch kindTok {
	case "NMOS":
		isPMOS = false
	case "PMOS":
		isPMOS = true
	default:
		m, ok := nl.models[f[5]]
		if !ok {
			return nil, fmt.Errorf("%s: unknown model %q", name, f[5])
		}
		switch m.Kind {
		case "NMOS":
			isPMOS = false
		case "PMOS":
			isPMOS = true
		default:
			return nil, fmt.Errorf("%s: model %q is kind %s, not NMOS/PMOS", name, f[5], m.Kind)
		}
		model = &m
	}

	var l, w float64
	for _, tok := range f[6:] {
		switch {
		case strings.HasPrefix(strings.ToUpper(tok), "L="):
			v, err := ParseValue(tok[2:])
			if err != nil {
				return nil, fmt.Errorf("%s: L=: %w", name, err)
			}
			l = v
		case strings.HasPrefix(strings.ToUpper(tok), "W="):
			v, err := ParseValue(tok[2:])
			if err != nil {
				return nil, fmt.Errorf("%s: W=: %w", name, err)
			}
			w = v
		}
	}
	if l == 0 || w == 0 {
		return nil, fmt.Errorf("%s: missing L= or W=", name)
	}
	k0 := device.MosfetK0(w, l)
	if model != nil {
		if kp, ok := model.Params["KP"]; ok {
			k0 = kp * w / l
		}
		return device.NewMOSFETModel(name, nodes, k0, isPMOS, model.Params), nil
	}
	return device.NewMOSFET(name, nodes, k0, isPMOS), nil
}

func (nl *Netlist) buildPWLResistor(name string, f []string) (device.Device, error) {
	if len(f) < 11 {
		return nil, fmt.Errorf("%s: expected n1 n2 followed by 4 (V,I) breakpoint pairs", name)
	}
	n1, n2 := nl.resolveNode(f[1]), nl.resolveNode(f[2])

	nums := f[3:]
	if len(nums)%2 != 0 {
		return nil, fmt.Errorf("%s: breakpoint values must come in (V,I) pairs", name)
	}
	bps := make([]device.PWLBreakpoint, len(nums)/2)
	for i := range bps {
		v, err := ParseValue(nums[2*i])
		if err != nil {
			return nil, fmt.Errorf("%s: breakpoint %d voltage: %w", name, i, err)
		}
		c, err := ParseValue(nums[2*i+1])
		if err != nil {
			return nil, fmt.Errorf("%s: breakpoint %d current: %w", name, i, err)
		}
		bps[i] = device.PWLBreakpoint{V: v, I: c}
	}
	return device.NewPWLResistor(name, []int{n1, n2}, bps), nil
}

func (nl *Netlist) buildLogicGate(name string, f []string) (device.Device, error) {
	kind := logicGateKinds[name[0]]

	var inputs, rest []string
	switch len(f) {
	case 7: // name nA nOut V R C A
		inputs, rest = f[1:2], f[2:]
	case 8: // name nA nB nOut V R C A
		inputs, rest = f[1:3], f[3:]
	default:
		return nil, fmt.Errorf("%s: expected nA [nB] nOut V R C A", name)
	}

	v, err := ParseValue(rest[1])
	if err != nil {
		return nil, fmt.Errorf("%s: V: %w", name, err)
	}
	r, err := ParseValue(rest[2])
	if err != nil {
		return nil, fmt.Errorf("%s: R: %w", name, err)
	}
	farads, err := ParseValue(rest[3])
	if err != nil {
		return nil, fmt.Errorf("%s: C: %w", name, err)
	}
	a, err := ParseValue(rest[4])
	if err != nil {
		return nil, fmt.Errorf("%s: A: %w", name, err)
	}

	inputNodes := make([]int, len(inputs))
	for i, n := range inputs {
		inputNodes[i] = nl.resolveNode(n)
	}
	outNode := nl.resolveNode(rest[0])
	ics := make([]float64, len(inputNodes)) // logic gate inputs have no IC= syntax; they settle from 0

	return device.NewLogicGate(name, kind, inputNodes, outNode, v, r, a, ics, farads), nil
}

func (nl *Netlist) buildSource(name string, f []string, isVoltage bool) (device.Device, error) {
	if len(f) < 4 {
		return nil, fmt.Errorf("%s: expected n1 n2 kind ...", name)
	}
	n1, n2 := nl.resolveNode(f[1]), nl.resolveNode(f[2])
	kindTok := strings.ToUpper(f[3])

	rest := strings.NewReplacer("(", " ", ")", " ").Replace(strings.Join(f[4:], " "))
	words := strings.Fields(rest)

	var kind waveform.Kind
	var params waveform.Params
	switch kindTok {
	case "DC":
		if len(words) < 1 {
			return nil, fmt.Errorf("%s: missing DC value", name)
		}
		v, err := ParseValue(words[0])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		kind, params.DCValue = waveform.DC, v
	case "SIN":
		sp, err := parseSin(words)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		kind, params.Sin = waveform.SIN, sp
	case "PULSE":
		pp, err := parsePulse(words)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		kind, params.Pulse = waveform.PULSE, pp
	default:
		return nil, fmt.Errorf("%s: unknown source kind %q", name, kindTok)
	}

	nodes := []int{n1, n2}
	if isVoltage {
		return device.NewVoltageSource(name, nodes, kind, params), nil
	}
	return device.NewCurrentSource(name, nodes, kind, params), nil
}

// parseSin parses "(dc amp freq [delay atten phase ncycles])".
func parseSin(words []string) (waveform.SinParams, error) {
	if len(words) < 3 {
		return waveform.SinParams{}, fmt.Errorf("SIN needs at least dc, amp, freq")
	}
	vals, err := parseValues(words)
	if err != nil {
		return waveform.SinParams{}, fmt.Errorf("SIN: %w", err)
	}

	var p waveform.SinParams
	p.DC, p.Amp, p.Freq = vals[0], vals[1], vals[2]
	if len(vals) > 3 {
		p.Delay = vals[3]
	}
	if len(vals) > 4 {
		p.Damping = vals[4]
	}
	if len(vals) > 5 {
		p.PhaseDeg = vals[5]
	}
	if len(vals) > 6 {
		p.NCycles = vals[6]
	}
	return p, nil
}

// parsePulse parses "(a1 a2 delay tr tf ton period [ncycles])".
func parsePulse(words []string) (waveform.PulseParams, error) {
	if len(words) < 7 {
		return waveform.PulseParams{}, fmt.Errorf("PULSE needs at least a1 a2 delay tr tf ton period")
	}
	vals, err := parseValues(words)
	if err != nil {
		return waveform.PulseParams{}, fmt.Errorf("PULSE: %w", err)
	}

	p := waveform.PulseParams{
		A1: vals[0], A2: vals[1], Delay: vals[2],
		Rise: vals[3], Fall: vals[4], OnTime: vals[5], Period: vals[6],
	}
	if len(vals) > 7 {
		p.NCycles = vals[7]
	}
	return p, nil
}

func parseValues(words []string) ([]float64, error) {
	vals := make([]float64, len(words))
	for i, w := range words {
		v, err := ParseValue(w)
		if err != nil {
			return nil, fmt.Errorf("param %d: %w", i, err)
		}
		vals[i] = v
	}
	return vals, nil
}
