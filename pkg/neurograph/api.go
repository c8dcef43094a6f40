// Package neurograph is the public client API for embedding the simulation
// engine. A Client owns one engine instance plus a snapshot store for
// persistence.
package neurograph

import (
	"context"
	"log/slog"

	"neurograph/internal/engine"
	"neurograph/internal/model"
	"neurograph/internal/storage"
)

const defaultDBPath = "neurograph.db"

type Options struct {
	StoreKind string
	DBPath    string
	Logger    *slog.Logger
	ApplySTDP bool
}

// NeuronOverrides optionally replaces neuron defaults at creation time.
type NeuronOverrides = engine.NeuronOverrides

// SynapseOverrides optionally replaces synapse defaults at creation time.
type SynapseOverrides = engine.SynapseOverrides

// NeuronState is the queryable view of one neuron.
type NeuronState = engine.NeuronState

// MemoryStats reports engine resource usage.
type MemoryStats = engine.MemoryStats

// Param selects a neuron parameter for SetNeuronParam.
type Param = engine.Param

const (
	ParamThreshold        = engine.ParamThreshold
	ParamRestPotential    = engine.ParamRestPotential
	ParamRefractoryPeriod = engine.ParamRefractoryPeriod
	ParamPotential        = engine.ParamPotential
)

type Client struct {
	engine *engine.Engine
	store  storage.Store
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		engine: engine.New(engine.Config{Logger: opts.Logger, ApplySTDP: opts.ApplySTDP}),
		store:  store,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Init readies both the engine and the snapshot store.
func (c *Client) Init(ctx context.Context) error {
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	return c.engine.Init()
}

func (c *Client) Shutdown() {
	c.engine.Shutdown()
}

func (c *Client) CreateNeuron(id uint32, kind model.NeuronKind, activation string, overrides *NeuronOverrides) (uint32, error) {
	return c.engine.CreateNeuron(id, kind, activation, overrides)
}

func (c *Client) DeleteNeuron(id uint32) error {
	return c.engine.DeleteNeuron(id)
}

func (c *Client) Connect(sourceID, targetID uint32) error {
	return c.engine.Connect(sourceID, targetID)
}

func (c *Client) Disconnect(sourceID, targetID uint32) error {
	return c.engine.Disconnect(sourceID, targetID)
}

func (c *Client) CreateSynapse(id, preID, postID uint32, kind model.SynapseKind, overrides *SynapseOverrides) (uint32, error) {
	return c.engine.CreateSynapse(id, preID, postID, kind, overrides)
}

func (c *Client) DeleteSynapse(id uint32) error {
	return c.engine.DeleteSynapse(id)
}

func (c *Client) Step(inputs map[uint32]float64, dt float64) ([]float64, error) {
	return c.engine.Step(inputs, dt)
}

func (c *Client) Run(steps int, dt float64) ([]float64, error) {
	return c.engine.Run(steps, dt)
}

func (c *Client) Reset() error {
	return c.engine.Reset()
}

func (c *Client) NeuronState(id uint32) (NeuronState, error) {
	return c.engine.NeuronState(id)
}

func (c *Client) SetNeuronParam(id uint32, param Param, value float64) error {
	return c.engine.SetNeuronParam(id, param, value)
}

func (c *Client) UpdateSynapseWeight(id uint32, preSpikeTime, postSpikeTime float64) error {
	return c.engine.UpdateSynapseWeight(id, preSpikeTime, postSpikeTime)
}

func (c *Client) MemoryStats() MemoryStats {
	return c.engine.MemoryStats()
}

func (c *Client) Clock() float64 {
	return c.engine.Clock()
}

// SaveNetwork persists the current graph and clock under name.
func (c *Client) SaveNetwork(ctx context.Context, name string) error {
	return c.store.SaveNetwork(ctx, c.engine.Snapshot(name))
}

// LoadNetwork replaces the engine state with the named saved network. The
// return reports whether the network existed.
func (c *Client) LoadNetwork(ctx context.Context, name string) (bool, error) {
	snapshot, ok, err := c.store.GetNetwork(ctx, name)
	if err != nil || !ok {
		return ok, err
	}
	if err := c.engine.Restore(snapshot); err != nil {
		return true, err
	}
	return true, nil
}

// ListNetworks reports the names of saved networks.
func (c *Client) ListNetworks(ctx context.Context) ([]string, error) {
	return c.store.ListNetworks(ctx)
}

// DeleteNetwork removes a saved network.
func (c *Client) DeleteNetwork(ctx context.Context, name string) error {
	return c.store.DeleteNetwork(ctx, name)
}
