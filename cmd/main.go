// SPDX-FileCopyrightText: 2026 beebs-dev contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	_ "k8s.io/client-go/plugin/pkg/client/auth"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	vpnv1 "github.com/beebs-dev/vpn-operator/api/v1"
	"github.com/beebs-dev/vpn-operator/internal/clock"
	"github.com/beebs-dev/vpn-operator/internal/controller"
	"github.com/beebs-dev/vpn-operator/internal/metrics"
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(vpnv1.AddToScheme(scheme))
}

// subcommands, one reconciler per process (§6): running all four in one
// binary would mean a crash-loop in one controller's dependencies (e.g. a
// probe pod image pull failure) takes the other three down with it.
var subcommands = map[string]func(ctrl.Manager, commonFlags) error{
	"manage-masks":        runMaskController,
	"manage-consumers":    runMaskConsumerController,
	"manage-reservations": runMaskReservationController,
	"manage-providers":    runMaskProviderController,
}

type commonFlags struct {
	watchFilterValue string
	requeueInterval  time.Duration
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <%s> [flags]\n", os.Args[0], joinKeys(subcommands))
		os.Exit(2)
	}

	run, ok := subcommands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown subcommand %q; must be one of %s\n", os.Args[1], joinKeys(subcommands))
		os.Exit(2)
	}

	fs := flag.NewFlagSet(os.Args[1], flag.ExitOnError)
	var metricsProbeAddr string
	var enableLeaderElection bool
	var cf commonFlags
	fs.StringVar(&metricsProbeAddr, "health-probe-bind-address", ":8081", "The address the health probe endpoint binds to.")
	fs.BoolVar(&enableLeaderElection, "leader-elect", false, "Enable leader election. Out of scope for a single namespace-scoped controller, left available for operators that shard by namespace.")
	fs.StringVar(&cf.watchFilterValue, "watch-filter", "", fmt.Sprintf("Label value that the controller watches to reconcile api objects. Label key is always %q. If unspecified, the controller watches all objects.", vpnv1.WatchLabel))
	fs.DurationVar(&cf.requeueInterval, "requeue-interval", 30*time.Second, "Interval after which steady-state resources are reconciled again regardless of whether they changed.")
	opts := zap.Options{Development: true}
	opts.BindFlags(fs)
	if err := fs.Parse(os.Args[2:]); err != nil {
		os.Exit(2)
	}

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme:                 scheme,
		Metrics:                metricsserver.Options{BindAddress: "0"},
		HealthProbeBindAddress: metricsProbeAddr,
		LeaderElection:         enableLeaderElection,
		LeaderElectionID:       "vpn-operator-" + os.Args[1] + ".beebs.dev",
	})
	if err != nil {
		setupLog.Error(err, "unable to start manager")
		os.Exit(1)
	}

	if err := run(mgr, cf); err != nil {
		setupLog.Error(err, "unable to create controller", "subcommand", os.Args[1])
		os.Exit(1)
	}

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up health check")
		os.Exit(1)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up ready check")
		os.Exit(1)
	}

	ctx := ctrl.SetupSignalHandler()

	if addr := os.Getenv("METRICS_PORT"); addr != "" {
		rec := recorderFor(os.Args[1])
		srv := metrics.NewServer(rec.Collectors()...)
		go func() {
			if err := srv.ListenAndServe(ctx, metrics.Addr(addr)); err != nil {
				setupLog.Error(err, "metrics server exited")
			}
		}()
	}

	setupLog.Info("starting manager", "subcommand", os.Args[1])
	if err := mgr.Start(ctx); err != nil {
		setupLog.Error(err, "problem running manager")
		os.Exit(1)
	}
}

func recorderFor(subcommand string) *metrics.Recorder {
	switch subcommand {
	case "manage-masks":
		return maskRecorder
	case "manage-consumers":
		return consumerRecorder
	case "manage-reservations":
		return reservationRecorder
	case "manage-providers":
		return providerRecorder
	default:
		return metrics.NewRecorder(subcommand)
	}
}

// Recorders are package-level so recorderFor and the per-subcommand runners
// share the exact same Recorder instance wired into the reconciler, rather
// than minting two independently-registered collector sets for one process.
var (
	maskRecorder        = metrics.NewRecorder("masks")
	consumerRecorder    = metrics.NewRecorder("consumers")
	reservationRecorder = metrics.NewRecorder("reservations")
	providerRecorder    = metrics.NewRecorder("providers")
)

func runMaskController(mgr ctrl.Manager, cf commonFlags) error {
	return (&controller.MaskReconciler{
		Client:           mgr.GetClient(),
		Scheme:           mgr.GetScheme(),
		WatchFilterValue: cf.watchFilterValue,
		Recorder:         mgr.GetEventRecorderFor("mask-controller"),
		Clock:            clock.Real{},
		Metrics:          maskRecorder,
		RequeueInterval:  cf.requeueInterval,
	}).SetupWithManager(mgr)
}

func runMaskConsumerController(mgr ctrl.Manager, cf commonFlags) error {
	return (&controller.MaskConsumerReconciler{
		Client:           mgr.GetClient(),
		Scheme:           mgr.GetScheme(),
		WatchFilterValue: cf.watchFilterValue,
		Recorder:         mgr.GetEventRecorderFor("maskconsumer-controller"),
		Clock:            clock.Real{},
		Metrics:          consumerRecorder,
		RequeueInterval:  cf.requeueInterval,
	}).SetupWithManager(mgr)
}

func runMaskReservationController(mgr ctrl.Manager, cf commonFlags) error {
	return (&controller.MaskReservationReconciler{
		Client:           mgr.GetClient(),
		Scheme:           mgr.GetScheme(),
		WatchFilterValue: cf.watchFilterValue,
		Recorder:         mgr.GetEventRecorderFor("maskreservation-controller"),
		Clock:            clock.Real{},
		Metrics:          reservationRecorder,
		RequeueInterval:  cf.requeueInterval,
	}).SetupWithManager(mgr)
}

func runMaskProviderController(mgr ctrl.Manager, cf commonFlags) error {
	return (&controller.MaskProviderReconciler{
		Client:                  mgr.GetClient(),
		Scheme:                  mgr.GetScheme(),
		WatchFilterValue:        cf.watchFilterValue,
		Recorder:                mgr.GetEventRecorderFor("maskprovider-controller"),
		Clock:                   clock.Real{},
		Metrics:                 providerRecorder,
		RequeueInterval:         cf.requeueInterval,
		SecretNameOverride:      os.Getenv("SECRET_NAME"),
		SecretNamespaceOverride: os.Getenv("SECRET_NAMESPACE"),
	}).SetupWithManager(mgr)
}

func joinKeys(m map[string]func(ctrl.Manager, commonFlags) error) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += "|"
		}
		out += k
	}
	return out
}
