// Package system exposes desktop actions to the model as the open_app,
// set_volume and empty_recycle_bin tools. The [Actions] interface is the
// boundary; [Local] implements it with platform commands run through os/exec.
package system
