package hart

// runtime.go implements the host-facing Runtime API surfaces spec §6 names
// beyond reset/run/step/peek-poke (those live on Hart/Step/snapshot.go
// already): single-shot fault injection, the external-agent attach points,
// and the preCsrInst/postCsrInst/preInst callbacks. Device protocols
// themselves (AIA message delivery, IOMMU page-table walks, PCI config
// space, a memory-consistency-model checker) stay out of scope -- spec.md's
// Non-goals already exclude "device modelling beyond the CSR/IO interface",
// and these hooks are exactly that interface: a notification point a host
// test-bench's own model of the device can attach to.

// InjectKind selects which access class inject-exception's next matching
// attempt will fault.
type InjectKind uint8

const (
	InjectFetch InjectKind = iota
	InjectLoad
)

// InjectedFault is a single pending host-injected fault (spec §6:
// "inject-exception(kind, cause, elem-ix, addr) -- next matching
// instruction raises this cause; consumed after one attempt").
type InjectedFault struct {
	Kind   InjectKind
	Cause  ExceptionCause
	ElemIx uint64
	Addr   uint64
}

// InjectException arms a one-shot fault: the next fetch (kind Fetch) or
// load (kind Load) raises cause instead of performing the real access. addr
// and elemIx are stored on the pending fault but are neither compared with
// the access nor copied into the Trap: the raised Trap's Tval is the
// address of the fetch or load it replaces.
func (h *Hart) InjectException(kind InjectKind, cause ExceptionCause, elemIx, addr uint64) {
	h.injected = &InjectedFault{Kind: kind, Cause: cause, ElemIx: elemIx, Addr: addr}
}

// takeInjected consumes a pending injected fault if its kind matches,
// returning the Trap to raise in place of the real access.
func (h *Hart) takeInjected(kind InjectKind, addr uint64) *Trap {
	if h.injected == nil || h.injected.Kind != kind {
		return nil
	}

	f := h.injected
	h.injected = nil

	return NewException(f.Cause, addr)
}

// ExternalDevice is the minimal contract an attach_{imsic,aplic,iommu,pci,
// mcm,perfapi} target must satisfy: a notification after every retired
// instruction, carrying enough for the host's own model to decide whether
// anything changed (e.g. whether to now assert an external-interrupt pending
// bit, or sample a counter).
type ExternalDevice interface {
	Notify(hartIndex uint, retired uint64)
}

// AttachedDevices names the external agents a hart can be wired to (spec
// §6's attach_* hooks).
type AttachedDevices struct {
	IMSIC   ExternalDevice
	APLIC   ExternalDevice
	IOMMU   ExternalDevice
	PCI     ExternalDevice
	MCM     ExternalDevice
	PerfAPI ExternalDevice
}

func (h *Hart) AttachIMSIC(d ExternalDevice)   { h.devices.IMSIC = d }
func (h *Hart) AttachAPLIC(d ExternalDevice)   { h.devices.APLIC = d }
func (h *Hart) AttachIOMMU(d ExternalDevice)   { h.devices.IOMMU = d }
func (h *Hart) AttachPCI(d ExternalDevice)     { h.devices.PCI = d }
func (h *Hart) AttachMCM(d ExternalDevice)     { h.devices.MCM = d }
func (h *Hart) AttachPerfAPI(d ExternalDevice) { h.devices.PerfAPI = d }

// notifyDevices calls every attached external agent once, after an
// instruction retires.
func (h *Hart) notifyDevices() {
	if h.devices.IMSIC != nil {
		h.devices.IMSIC.Notify(h.cfg.HartIndex, h.retired)
	}

	if h.devices.APLIC != nil {
		h.devices.APLIC.Notify(h.cfg.HartIndex, h.retired)
	}

	if h.devices.IOMMU != nil {
		h.devices.IOMMU.Notify(h.cfg.HartIndex, h.retired)
	}

	if h.devices.PCI != nil {
		h.devices.PCI.Notify(h.cfg.HartIndex, h.retired)
	}

	if h.devices.MCM != nil {
		h.devices.MCM.Notify(h.cfg.HartIndex, h.retired)
	}

	if h.devices.PerfAPI != nil {
		h.devices.PerfAPI.Notify(h.cfg.HartIndex, h.retired)
	}
}

// RuntimeHooks groups the optional host callbacks spec §6 names around CSR
// instructions and each step: PreCSRInst/PostCSRInst bracket a Zicsr
// instruction, PreInst runs before every fetch attempt and can request a
// halt or a reset in place of the instruction.
type RuntimeHooks struct {
	PreCSRInst  func(hartIndex uint, csr uint16)
	PostCSRInst func(hartIndex uint, csr uint16, old, newVal uint64)
	PreInst     func(hartIndex uint) (halt, reset bool)
}

// SetRuntimeHooks installs the host callbacks; a zero-value RuntimeHooks
// disables all of them.
func (h *Hart) SetRuntimeHooks(hooks RuntimeHooks) { h.hooks = hooks }
